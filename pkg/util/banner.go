package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
)

// ANSI 颜色
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[1;31m"
	ColorGreen  = "\x1b[1;32m"
	ColorYellow = "\x1b[1;33m"
	ColorBlue   = "\x1b[1;34m"
	ColorCyan   = "\x1b[1;36m"
)

var colors = map[string]string{
	"red":    ColorRed,
	"green":  ColorGreen,
	"yellow": ColorYellow,
	"blue":   ColorBlue,
	"cyan":   ColorCyan,
}

// colorCode 颜色名转 ANSI 码，未知颜色不着色
func colorCode(name string) string {
	if c, ok := colors[strings.ToLower(name)]; ok {
		return c
	}
	return ColorReset
}

// Banner 生成带颜色的 ASCII banner，末尾附加一行说明（可为空）
func Banner(text, color, subtitle string) string {
	ansi := colorCode(color)
	var b strings.Builder
	for _, line := range figure.NewFigure(text, "", true).Slicify() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(ansi + line + ColorReset + "\n")
	}
	if subtitle != "" {
		b.WriteString(subtitle + "\n")
	}
	return b.String()
}

// PrintBanner 启动时输出 banner
func PrintBanner(w io.Writer, text, color, subtitle string) {
	_, _ = fmt.Fprint(w, Banner(text, color, subtitle))
}
