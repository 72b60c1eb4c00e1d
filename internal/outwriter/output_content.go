package outwriter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
)

const highlightStyle = "monokai"

// WriteFileContent prints file bytes. Text mode may apply syntax highlighting;
// json wraps the content with its path.
func WriteFileContent(content []byte, path string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Path    string `json:"path"`
				Size    int    `json:"size"`
				Content string `json:"content"`
			}{path, len(content), string(content)})
		}, "Wrote JSON")
	case schema.TextOut, "":
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if cfg.Highlight && cfg.OutputFile == "" {
				return highlight(w, path, string(content))
			}
			_, err := w.Write(content)
			return err
		}, "Wrote file content")
	default:
		return fmt.Errorf("%s output is not supported by show; use text or json", cfg.Output)
	}
}

// WriteUnifiedDiff prints a unified diff, coloring added, deleted and hunk lines when enabled.
func WriteUnifiedDiff(diff, path, fromRev, toRev string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Path string `json:"path"`
				From string `json:"from"`
				To   string `json:"to"`
				Diff string `json:"diff"`
			}{path, fromRev, toRev, diff})
		}, "Wrote JSON")
	case schema.TextOut, "":
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if !cfg.UseColors || cfg.OutputFile != "" {
				_, err := io.WriteString(w, diff)
				return err
			}
			return writeColoredDiff(w, diff)
		}, "Wrote diff")
	default:
		return fmt.Errorf("%s output is not supported by show --against; use text or json", cfg.Output)
	}
}

func writeColoredDiff(w io.Writer, diff string) error {
	bw := bufio.NewWriter(w)
	for line := range strings.SplitAfterSeq(diff, "\n") {
		if line == "" {
			continue
		}
		var err error
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			_, err = contract.OtherColor.Fprint(bw, line)
		case strings.HasPrefix(line, "@@"):
			_, err = contract.HunkColor.Fprint(bw, line)
		case strings.HasPrefix(line, "+"):
			_, err = contract.AddedColor.Fprint(bw, line)
		case strings.HasPrefix(line, "-"):
			_, err = contract.DeletedColor.Fprint(bw, line)
		default:
			_, err = bw.WriteString(line)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// lexerForPath picks a lexer by file name and falls back to plain text.
func lexerForPath(path string) chroma.Lexer {
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func highlight(w io.Writer, path, content string) error {
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	it, err := lexerForPath(path).Tokenise(nil, content)
	if err != nil {
		return fmt.Errorf("tokenise %s: %w", path, err)
	}
	return formatter.Format(w, style, it)
}
