package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ByLCY/flyer/layout"
)

var (
	colorGray   = lipgloss.Color("245")
	colorYellow = lipgloss.Color("220")

	styleDim     = lipgloss.NewStyle().Foreground(colorGray)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func newInspectCmd() *cobra.Command {
	opts := &runOptions{}
	var css bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "打印组版摘要、spread 与页面指令",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := startEngine(ctx, opts, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			presets, err := e.Presets()
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), e.Current(), presets, css)
			return nil
		},
	}
	opts.bind(cmd, false)
	cmd.Flags().BoolVar(&css, "css", false, "同时输出主题 CSS 变量")
	return cmd
}

// printInspect 以当前主色渲染摘要，便于在终端里预览配色。
func printInspect(w io.Writer, res *layout.Result, presets []string, css bool) {
	if res == nil {
		return
	}
	accent := lipgloss.NewStyle().Bold(true)
	if primary, ok := res.Theme.Get("--color-primary"); ok && strings.HasPrefix(primary, "#") {
		accent = accent.Foreground(lipgloss.Color(primary))
	}

	fmt.Fprintln(w, accent.Render(res.Summary.Line()))
	fmt.Fprintln(w, styleDim.Render(res.Page.String()))
	fmt.Fprintf(w, "%s %s %s × %s\n",
		styleDim.Render("panel"),
		res.Format.Orientation,
		layout.FormatMM(res.Format.WidthMM),
		layout.FormatMM(res.Format.HeightMM))

	for _, sp := range res.Spreads {
		var b strings.Builder
		b.WriteString(accent.Render(sp.Label))
		fmt.Fprintf(&b, "\n%s × %s", layout.FormatMM(sp.WidthMM), layout.FormatMM(sp.HeightMM))
		if sp.Reversed {
			b.WriteString(styleDim.Render("  (reversed)"))
		}
		b.WriteString("\n" + slotRow(sp))
		if len(sp.FoldLines) > 0 {
			xs := make([]string, len(sp.FoldLines))
			for i, fl := range sp.FoldLines {
				xs[i] = layout.FormatMM(fl.XMM)
			}
			b.WriteString("\n" + styleDim.Render("folds at "+strings.Join(xs, ", ")))
		}
		fmt.Fprintln(w, styleBox.Render(b.String()))
	}

	if len(presets) > 0 {
		fmt.Fprintln(w, styleDim.Render("presets: "+strings.Join(presets, ", ")))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, styleWarning.Render("! "+warn.String()))
	}
	if css {
		fmt.Fprint(w, res.Theme.CSS(".flyer"))
	}
}

// slotRow 按视觉顺序列出面板，折线处用 ┆ 分隔。
func slotRow(sp layout.Spread) string {
	order := sp.VisualOrder()
	cells := make([]string, len(order))
	for i, idx := range order {
		cells[i] = "Panel " + strconv.Itoa(idx)
	}
	sep := " ┆ "
	if len(sp.FoldLines) == 0 {
		sep = " │ "
	}
	return strings.Join(cells, sep)
}
