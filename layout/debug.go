package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将组版结果树输出为 JSON，便于调试或交给展示层。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
