package service

// StageStatus 阶段执行结果
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageSkipped   StageStatus = "skipped"
	StageDegraded  StageStatus = "degraded"
)

// StageResult is the tagged outcome of one best-effort stage.
type StageResult[T any] struct {
	Status StageStatus
	Value  T
	Err    error
}

func succeeded[T any](v T) StageResult[T] {
	return StageResult[T]{Status: StageSucceeded, Value: v}
}

func skipped[T any]() StageResult[T] {
	return StageResult[T]{Status: StageSkipped}
}

func degraded[T any](err error) StageResult[T] {
	return StageResult[T]{Status: StageDegraded, Err: err}
}

// OK reports whether the stage produced a value.
func (r StageResult[T]) OK() bool { return r.Status == StageSucceeded }

// Report lists how each best-effort stage of one generation ended.
type Report struct {
	Image StageStatus `json:"image"`
	Video StageStatus `json:"video"`
	Audio StageStatus `json:"audio"`
}
