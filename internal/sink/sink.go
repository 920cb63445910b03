package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/John-Robertt/mlscrape/internal/domain"
	"github.com/John-Robertt/mlscrape/internal/infra/fsx"
)

// DefaultPath 是输出文件的默认位置（相对当前目录）。
const DefaultPath = "voot.json"

// JSONFile 把 Catalog 写为缩进的 UTF-8 JSON 文件（单次写入）。
type JSONFile struct {
	Path string
}

func (s JSONFile) Write(c domain.Catalog) error {
	path := strings.TrimSpace(s.Path)
	if path == "" {
		return errors.New("输出路径不能为空")
	}
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	return fsx.WriteFile(path, b)
}

// Marshal 输出 {"movies": [...]}：两空格缩进、不转义 HTML 字符（URL 中的 & 保持原样）、末尾换行。
func Marshal(c domain.Catalog) ([]byte, error) {
	if c.Movies == nil {
		c.Movies = []domain.MovieRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
