package cmd

import (
	"github.com/hpcloud/tail"
	"go.uber.org/zap"

	"github.com/kzn-tools/kaizen/internal/observability"
)

// watchFlag backs scan's --watch flag, declared here alongside the
// watch support it switches on.
var watchFlag bool

// watchForChanges tails a discovered source file for append-style
// writes (the same editor-save-triggers-rewrite behavior
// github.com/hpcloud/tail was built to follow for log files) and
// invokes onChange whenever new content lands, until the returned
// tail is stopped and its Lines channel closes.
//
// This gives `kaizen scan --watch` a re-run trigger without pulling in
// a dedicated filesystem-notification library absent from this pack;
// tail.TailFile's ReOpen/Follow already covers the "file was replaced
// by a fresh write" case editors commonly produce (see DESIGN.md).
func watchForChanges(path string, onChange func()) (*tail.Tail, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}
	go func() {
		for range t.Lines {
			onChange()
		}
		if err := t.Err(); err != nil {
			observability.GetLogger().Warn("watch stream ended", zap.String("file", path), zap.Error(err))
		}
	}()
	return t, nil
}
