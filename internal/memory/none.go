package memory

import "context"

// None discards everything. It backs sessions with memory disabled.
type None struct{}

func (None) Name() string                                          { return "none" }
func (None) Store(context.Context, string, string, Category) error { return nil }
func (None) Recall(context.Context, string, int) ([]Entry, error)  { return nil, nil }
func (None) Get(context.Context, string) (Entry, error)            { return Entry{}, ErrNotFound }
func (None) Forget(context.Context, string) (bool, error)          { return false, nil }
func (None) Count(context.Context) (int, error)                    { return 0, nil }
func (None) Close() error                                          { return nil }
