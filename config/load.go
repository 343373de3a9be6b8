package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadError 表示配置文档无法读取或无法解析，属于致命错误。
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("配置加载失败 %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError 判断 err 链中是否包含 LoadError。
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Load 读取并解析配置文档。source 可以是文件路径或 http(s) URL；
// .yaml/.yml 后缀按 YAML 解析，其余按 JSON 解析。
func Load(ctx context.Context, source string) (Configuration, error) {
	data, err := fetch(ctx, source)
	if err != nil {
		return Configuration{}, &LoadError{Source: source, Err: err}
	}
	cfg, err := Decode(data, formatOf(source))
	if err != nil {
		return Configuration{}, &LoadError{Source: source, Err: err}
	}
	return cfg, nil
}

// Decode 解析内存中的配置文档。
func Decode(data []byte, syntax Syntax) (Configuration, error) {
	var cfg Configuration
	if err := decodeDocument(data, syntax, &cfg); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// Syntax 表示文档的序列化格式。
type Syntax int

const (
	SyntaxJSON Syntax = iota
	SyntaxYAML
)

func formatOf(source string) Syntax {
	ext := strings.ToLower(filepath.Ext(source))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".yaml", ".yml":
		return SyntaxYAML
	default:
		return SyntaxJSON
	}
}

func decodeDocument(data []byte, syntax Syntax, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("文档为空")
	}
	switch syntax {
	case SyntaxYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("解析 YAML 失败: %w", err)
		}
	default:
		trimmed := bytes.TrimSpace(data)
		if trimmed[0] != '{' {
			return fmt.Errorf("顶层必须是 JSON 对象")
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("解析 JSON 失败: %w", err)
		}
	}
	return nil
}

func fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("未指定配置来源")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("配置未找到: HTTP %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}
