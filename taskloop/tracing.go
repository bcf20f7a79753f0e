package taskloop

/*************************************************************************************************/
/* TRACING RELATED CONSTANTS                                                                     */
/*************************************************************************************************/

// Constants used for tracing and metrics.
const (
	// Package name used by library tracer and meter
	pkgName = "taskloop"
	// Package version
	pkgVersion = "0.0.0"

	// Namespace used by spans, metrics and attributes
	namespace = "taskloop"

	// Name of span used to trace the execution of a task on the loop
	spanLoopTask = namespace + ".task"
	// Name of span used to trace background work started by a task
	spanLoopBackground = namespace + ".background"

	// Counter of executed tasks
	metricTasksExecuted = namespace + ".tasks.executed"
	// Counter of dropped tasks
	metricTasksDropped = namespace + ".tasks.dropped"

	// Attribute used to store the loop ID
	attrLoopId = namespace + ".loop_id"
	// Attribute used to store the Go type of the executed task
	attrTaskType = namespace + ".task_type"
	// Attribute used to store the name of the background work
	attrBackgroundName = namespace + ".background_name"
)
