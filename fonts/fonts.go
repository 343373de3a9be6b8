package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
)

// FamilyName 返回 CSS font-family 列表中的第一个字体名，去掉引号与空白。
// 例如 "'Archivo Black', sans-serif" → "Archivo Black"。
func FamilyName(css string) string {
	first := css
	if i := strings.IndexByte(css, ','); i >= 0 {
		first = css[:i]
	}
	first = strings.ReplaceAll(first, "'", "")
	first = strings.ReplaceAll(first, `"`, "")
	return strings.TrimSpace(first)
}

// Families 返回 CSS font-family 列表中的全部字体名（保持顺序）。
func Families(css string) []string {
	var out []string
	for _, part := range strings.Split(css, ",") {
		if name := FamilyName(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

var fontExts = []string{".ttf", ".otf"}

// Locate 按字体名查找字体文件：先在 dirs 中按文件名匹配，再查询系统字体目录。
func Locate(family string, dirs ...string) (string, error) {
	if family == "" {
		return "", fmt.Errorf("字体名为空")
	}
	candidates := fileCandidates(family)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, want := range candidates {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if strings.EqualFold(e.Name(), want) {
					return filepath.Join(dir, e.Name()), nil
				}
			}
		}
	}
	for _, want := range candidates {
		if path, err := findfont.Find(want); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("找不到字体 %s", family)
}

// Load 读取字体文件内容，查找规则同 Locate。
func Load(family string, dirs ...string) ([]byte, error) {
	path, err := Locate(family, dirs...)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// fileCandidates 生成 "Archivo Black" → Archivo-Black.ttf / ArchivoBlack.ttf / Archivo-Black-Regular.ttf 等候选文件名。
func fileCandidates(family string) []string {
	if ext := strings.ToLower(filepath.Ext(family)); ext == ".ttf" || ext == ".otf" {
		return []string{family}
	}
	bases := []string{
		strings.ReplaceAll(family, " ", "-"),
		strings.ReplaceAll(family, " ", ""),
		family,
	}
	var out []string
	seen := map[string]bool{}
	for _, base := range bases {
		for _, suffix := range []string{"", "-Regular"} {
			for _, ext := range fontExts {
				name := base + suffix + ext
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
	}
	return out
}
