package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"
)

// textLine 是换行后的一行文字，Width 为 mm。
type textLine struct {
	Content string
	Width   float64
}

// measurer 抽象出字宽测量，*canvas.FontFace 满足该接口。
type measurer interface {
	TextWidth(string) float64
}

var _ measurer = (*canvas.FontFace)(nil)

// greedyWrapTokens 贪心换行：优先在空白处分割，单词超过限制时在词内拆分，
// 显式换行始终保留。所有宽度均为 mm。
func greedyWrapTokens(content string, width float64, face measurer) []textLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	tokens := tokenizeContent(content)
	var lines []textLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, textLine{})
			}
			return
		}
		// 行首行尾的空白不占版面
		lineStr := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		lines = append(lines, textLine{Content: lineStr, Width: face.TextWidth(lineStr)})
		builder.Reset()
		currentWidth = 0
	}

	appendToken := func(token string) {
		if builder.Len() == 0 && strings.TrimSpace(token) == "" {
			return
		}
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for i, token := range tokens {
		if token == "\n" {
			// 恰好排满的一行已经换行，紧随的显式换行不再产生空行
			if builder.Len() == 0 && i > 0 && tokens[i-1] != "\n" && len(lines) > 0 {
				continue
			}
			emit(true)
			continue
		}

		tokenWidth := face.TextWidth(token)
		if strings.TrimSpace(token) == "" {
			if currentWidth+tokenWidth > limit {
				emit(false)
				continue
			}
			appendToken(token)
			continue
		}
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token)
			if currentWidth >= limit {
				emit(false)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
			if currentWidth >= limit {
				emit(false)
			}
		}
	}

	if builder.Len() > 0 {
		emit(false)
	}
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face measurer) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
