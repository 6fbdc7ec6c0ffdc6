package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/auto-qa/internal/progress"
)

// DefaultIncludes selects the files an import reads when no include
// patterns are given.
var DefaultIncludes = []string{"**/*.md", "**/*.markdown"}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	".idea":        true,
	".vscode":      true,
}

// ImportOptions controls one directory import.
type ImportOptions struct {
	Include []string
	Exclude []string
	// Category applies to files whose frontmatter names none.
	Category Category
	TeamID   *int64
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Upserter is the storage an import writes to.
type Upserter interface {
	UpsertBySource(ctx context.Context, e *Entry) (bool, error)
}

// Importer loads markdown files into the knowledge base.
type Importer struct {
	store    Upserter
	md       goldmark.Markdown
	reporter progress.Reporter
	logger   *zap.Logger
}

// NewImporter creates an importer. A nil reporter disables progress output.
func NewImporter(store Upserter, reporter progress.Reporter, logger *zap.Logger) *Importer {
	if reporter == nil {
		reporter = progress.Nop()
	}
	return &Importer{
		store:    store,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		reporter: reporter,
		logger:   logger.Named("knowledge"),
	}
}

// Import walks root and upserts one entry per matching markdown file, keyed
// by its path relative to root.
func (im *Importer) Import(ctx context.Context, root string, opts ImportOptions) (*ImportResult, error) {
	if opts.Category == "" {
		opts.Category = CategoryUniversal
	}
	if !opts.Category.Valid() {
		return nil, fmt.Errorf("invalid category %q", opts.Category)
	}
	include := opts.Include
	if len(include) == 0 {
		include = DefaultIncludes
	}

	files, err := collectFiles(root, include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	im.reporter.Start(len(files))
	defer im.reporter.Finish()

	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		im.reporter.Update(i+1, rel)

		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			im.logger.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(err))
			result.Skipped++
			continue
		}

		entry, err := im.ParseFile(rel, data)
		if err != nil {
			im.logger.Warn("skipping file", zap.String("path", rel), zap.Error(err))
			result.Skipped++
			continue
		}
		if entry.Category == "" {
			entry.Category = opts.Category
		}
		if !entry.Category.Valid() {
			im.logger.Warn("skipping file with unknown category", zap.String("path", rel), zap.String("category", string(entry.Category)))
			result.Skipped++
			continue
		}
		entry.TeamID = opts.TeamID

		created, err := im.store.UpsertBySource(ctx, entry)
		if err != nil {
			return result, fmt.Errorf("storing %s: %w", rel, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	im.logger.Info("knowledge import complete",
		zap.String("root", root),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func collectFiles(root string, include, exclude []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(rel, include) && !matchesAny(rel, exclude) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// matchesAny reports whether rel, or its base name, matches a pattern.
func matchesAny(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

type frontmatter struct {
	Title    string   `yaml:"title"`
	Category Category `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

var frontmatterPattern = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)

// splitFrontmatter separates a leading YAML block from the markdown body.
func splitFrontmatter(data []byte) (*frontmatter, []byte, error) {
	fm := &frontmatter{}
	m := frontmatterPattern.FindSubmatchIndex(data)
	if m == nil {
		return fm, data, nil
	}
	if err := yaml.Unmarshal(data[m[2]:m[3]], fm); err != nil {
		return nil, nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	return fm, data[m[1]:], nil
}

// ParseFile turns one markdown file into an entry. The title comes from
// the frontmatter, then the first heading, then the file name.
func (im *Importer) ParseFile(rel string, data []byte) (*Entry, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	doc := im.md.Parser().Parse(text.NewReader(body))
	heading, content := plainText(doc, body)
	if content == "" {
		return nil, fmt.Errorf("no text content")
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = heading
	}
	if title == "" {
		name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		title = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	}

	tags := make([]string, 0, len(fm.Tags))
	for _, t := range fm.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	return &Entry{
		Title:      title,
		Content:    content,
		Category:   fm.Category,
		Tags:       tags,
		SourcePath: rel,
	}, nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// plainText renders the document as plain text and returns it together
// with the text of the first heading.
func plainText(doc ast.Node, source []byte) (string, string) {
	var (
		b       bytes.Buffer
		heading string
	)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if !entering {
				b.WriteString("\n\n")
			} else if heading == "" {
				heading = strings.TrimSpace(inlineText(node, source))
			}
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(source))
				}
				b.WriteByte('\n')
				return ast.WalkSkipChildren, nil
			}
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *east.TableCell:
			if !entering {
				b.WriteByte(' ')
			}
		case *ast.Paragraph:
			if !entering {
				b.WriteString("\n\n")
			}
		case *ast.TextBlock, *east.TableRow, *east.TableHeader:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	out := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return heading, strings.TrimSpace(out)
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
