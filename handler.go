package dispatch

import (
	"github.com/napalu/dispatch/parse"
)

// NativeFunc is a plain argv-style command implementation.
type NativeFunc func(src Source, argv []string) (ExecutionResult, error)

// NativeHandler adapts a NativeFunc to the Handler contract using
// shell-style word splitting, so commands without a declared grammar can
// still be registered.
type NativeHandler struct {
	Func        NativeFunc
	Description string
	HelpText    string
	UsageText   string
}

func (h *NativeHandler) Process(src Source, arguments string) (ExecutionResult, error) {
	argv, err := parse.Split(arguments)
	if err != nil {
		return Empty(), parse.NewErrorf(arguments, 0, "malformed arguments: %v", err)
	}
	if h.Func == nil {
		return Empty(), ErrNoExecutor
	}

	return h.Func(src, argv)
}

func (h *NativeHandler) Suggestions(src Source, arguments string) ([]string, error) {
	return nil, nil
}

func (h *NativeHandler) ShortDescription(src Source) string {
	return h.Description
}

func (h *NativeHandler) Help(src Source) string {
	return h.HelpText
}

func (h *NativeHandler) Usage(src Source) string {
	return h.UsageText
}
