package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling in serve mode: queue management, worker pool control, and
// periodic pipeline runs.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
