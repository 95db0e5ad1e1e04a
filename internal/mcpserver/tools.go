package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/errs"
	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/scan"
	"github.com/Zuo-Peng/chatstat/internal/search"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

// --- find_chats ---

type findChats struct{ Deps }

func (t *findChats) Definition() mcp.Tool {
	return mcp.NewTool("find_chats",
		mcp.WithDescription("Find WhatsApp chat exports under a directory, or under the configured default locations when no path is given."),
		mcp.WithString("path", mcp.Description("Directory to search recursively")),
	)
}

type findResult struct {
	Files    []scan.ExportFile `json:"files"`
	Warnings []string          `json:"warnings,omitempty"`
}

func (t *findChats) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, warnings, err := t.discover(stringArg(req, "path"))
	if err != nil {
		return errorResult(err), nil
	}
	out := findResult{Files: files}
	if out.Files == nil {
		out.Files = []scan.ExportFile{}
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return jsonResult(out)
}

// discover scans root, or the configured roots when root is empty.
func (d Deps) discover(root string) ([]scan.ExportFile, []scan.Warning, error) {
	return scan.Discover(d.Config.Roots, root, scan.Options{
		Patterns: d.Config.Patterns,
		Encoding: d.Config.Encoding,
		Logger:   d.Logger,
	})
}

func (d Deps) analyzeOptions(order string) (analyze.Options, error) {
	if order == "" {
		order = d.Config.DateOrder
	}
	o, ok := parse.ParseDateOrder(order)
	if !ok {
		return analyze.Options{}, errs.New(errs.InvalidArgument, "", "unknown date_order %q", order)
	}
	return analyze.Options{DateOrder: o, Encoding: d.Config.Encoding, Logger: d.Logger}, nil
}

// --- analyze_chat ---

type analyzeChat struct{ Deps }

func (t *analyzeChat) Definition() mcp.Tool {
	return mcp.NewTool("analyze_chat",
		mcp.WithDescription("Analyze a WhatsApp chat export: total messages, messages per sender and per date, top participants."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the chat export file")),
		mcp.WithString("date_order", mcp.Description("How to read ambiguous dates: day-first or month-first")),
		mcp.WithNumber("top", mcp.Description("Number of top participants to list (default 5)")),
	)
}

type analyzeResult struct {
	Path       string              `json:"path"`
	Variant    parse.Variant       `json:"variant"`
	Stats      stats.Statistics    `json:"stats"`
	TopSenders []stats.SenderCount `json:"top_senders"`
}

func (t *analyzeChat) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringArg(req, "path")
	if path == "" {
		return errorResult(errs.New(errs.InvalidArgument, "", "path is required")), nil
	}
	opts, err := t.analyzeOptions(stringArg(req, "date_order"))
	if err != nil {
		return errorResult(err), nil
	}
	report, err := analyze.AnalyzeFile(path, opts)
	if err != nil {
		t.Logger.Warn("analyze_chat failed", "path", path, "err", err)
		return errorResult(err), nil
	}
	return jsonResult(analyzeResult{
		Path:       report.File.Path,
		Variant:    report.File.Variant,
		Stats:      report.Stats,
		TopSenders: report.Stats.TopSenders(intArg(req, "top", 5)),
	})
}

// --- read_chat ---

type readChat struct{ Deps }

func (t *readChat) Definition() mcp.Tool {
	return mcp.NewTool("read_chat",
		mcp.WithDescription("Return the raw text of a chat export."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the chat export file")),
		mcp.WithNumber("max_size_mb", mcp.Description("Refuse files larger than this many megabytes (default 10)")),
	)
}

func (t *readChat) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringArg(req, "path")
	if path == "" {
		return errorResult(errs.New(errs.InvalidArgument, "", "path is required")), nil
	}
	maxMB := intArg(req, "max_size_mb", t.Config.MaxReadMB)
	if maxMB <= 0 {
		return errorResult(errs.New(errs.InvalidArgument, path, "max_size_mb must be positive")), nil
	}
	text, err := analyze.ReadExport(path, int64(maxMB)*1024*1024, t.Config.Encoding)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

// --- search_chats ---

type searchChats struct{ Deps }

func (t *searchChats) Definition() mcp.Tool {
	return mcp.NewTool("search_chats",
		mcp.WithDescription("Full-text search over the messages of discovered chat exports."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Words to search for")),
		mcp.WithString("path", mcp.Description("An export file or a directory to search; defaults to the configured locations")),
		mcp.WithString("sender", mcp.Description("Only messages from this sender")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	)
}

func (t *searchChats) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := stringArg(req, "query")
	if query == "" {
		return errorResult(errs.New(errs.InvalidArgument, "", "query is required")), nil
	}

	var files []scan.ExportFile
	path := stringArg(req, "path")
	if info, err := os.Stat(path); path != "" && err == nil && !info.IsDir() {
		files = []scan.ExportFile{{Path: path, Size: info.Size(), Mtime: info.ModTime().Unix()}}
	} else {
		found, _, err := t.discover(path)
		if err != nil {
			return errorResult(err), nil
		}
		files = found
	}

	opts, err := t.analyzeOptions("")
	if err != nil {
		return errorResult(err), nil
	}

	db, err := index.OpenMemory()
	if err != nil {
		return errorResult(errs.New(errs.Internal, "", "open index: %v", err)), nil
	}
	defer db.Close()

	st, err := index.IndexAll(db, files, opts, t.Logger)
	if err != nil {
		return errorResult(errs.New(errs.Internal, "", "index: %v", err)), nil
	}
	t.Logger.Debug("search_chats indexed", "stats", st.String())

	results, err := search.Search(db, search.Options{
		Query:  query,
		Sender: stringArg(req, "sender"),
		Limit:  intArg(req, "limit", 20),
	})
	if err != nil {
		return errorResult(errs.New(errs.InvalidArgument, "", "%v", err)), nil
	}
	if results == nil {
		results = []search.Result{}
	}
	return jsonResult(results)
}
