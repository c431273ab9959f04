// SPDX-License-Identifier: Apache-2.0

package domain

type AttributeKind string

const (
	KindProcess          AttributeKind = "process"
	KindSystemMetric     AttributeKind = "system_metric"
	KindSyslog           AttributeKind = "syslog"
	KindSystemProperties AttributeKind = "system_properties"
	KindWorkflowLog      AttributeKind = "nextflow_log"
)

// AllAttributeKinds lists every payload kind in declaration order.
var AllAttributeKinds = []AttributeKind{
	KindProcess,
	KindSystemMetric,
	KindSyslog,
	KindSystemProperties,
	KindWorkflowLog,
}

// Attributes is the payload carried by an event. Exactly one concrete type is
// chosen when the event is generated; consumers switch on the concrete type.
type Attributes interface {
	Kind() AttributeKind
	isAttributes()
}

type InputFile struct {
	FileName      string `json:"file_name"`
	FileSize      int64  `json:"file_size"`
	FilePath      string `json:"file_path"`
	FileDirectory string `json:"file_directory"`
	UpdatedAt     string `json:"file_updated_at_timestamp"`
}

type ProcessProperties struct {
	ToolName                     string      `json:"tool_name"`
	ToolPID                      string      `json:"tool_pid"`
	ToolParentPID                string      `json:"tool_parent_pid"`
	ToolBinaryPath               string      `json:"tool_binary_path"`
	ToolCmd                      string      `json:"tool_cmd"`
	StartTimestamp               string      `json:"start_timestamp"`
	ProcessCPUUtilization        float64     `json:"process_cpu_utilization"`
	ProcessMemoryUsage           int64       `json:"process_memory_usage"`
	ProcessMemoryVirtual         int64       `json:"process_memory_virtual"`
	ProcessRunTime               int64       `json:"process_run_time"`
	ProcessDiskReadLastInterval  int64       `json:"process_disk_usage_read_last_interval"`
	ProcessDiskWriteLastInterval int64       `json:"process_disk_usage_write_last_interval"`
	ProcessDiskReadTotal         int64       `json:"process_disk_usage_read_total"`
	ProcessDiskWriteTotal        int64       `json:"process_disk_usage_write_total"`
	ProcessStatus                string      `json:"process_status"`
	InputFiles                   []InputFile `json:"input_files"`
	ContainerID                  string      `json:"container_id"`
	JobID                        string      `json:"job_id"`
	WorkingDirectory             string      `json:"working_directory"`
}

type DiskStatistic struct {
	TotalSpace     int64   `json:"disk_total_space"`
	UsedSpace      int64   `json:"disk_used_space"`
	AvailableSpace int64   `json:"disk_available_space"`
	Utilization    float64 `json:"disk_utilization"`
}

type SystemMetric struct {
	EventsName              string                   `json:"events_name"`
	SystemMemoryTotal       int64                    `json:"system_memory_total"`
	SystemMemoryUsed        int64                    `json:"system_memory_used"`
	SystemMemoryAvailable   int64                    `json:"system_memory_available"`
	SystemMemoryUtilization float64                  `json:"system_memory_utilization"`
	SystemMemorySwapTotal   int64                    `json:"system_memory_swap_total"`
	SystemMemorySwapUsed    int64                    `json:"system_memory_swap_used"`
	SystemCPUUtilization    float64                  `json:"system_cpu_utilization"`
	SystemDiskIO            map[string]DiskStatistic `json:"system_disk_io"`
}

type SyslogProperties struct {
	SystemMetrics    SystemMetric `json:"system_metrics"`
	ErrorDisplayName string       `json:"error_display_name"`
	ErrorID          string       `json:"error_id"`
	ErrorLine        string       `json:"error_line"`
	FileLineNumber   int64        `json:"file_line_number"`
	FilePreviousLogs []string     `json:"file_previous_logs"`
}

type AWSInstanceMetadata struct {
	InstanceID       string `json:"instance_id"`
	InstanceType     string `json:"instance_type"`
	AvailabilityZone string `json:"availability_zone"`
	Region           string `json:"region"`
}

type SystemProperties struct {
	OS             string                   `json:"os"`
	OSVersion      string                   `json:"os_version"`
	KernelVersion  string                   `json:"kernel_version"`
	Arch           string                   `json:"arch"`
	NumCPUs        int64                    `json:"num_cpus"`
	Hostname       string                   `json:"hostname"`
	TotalMemory    int64                    `json:"total_memory"`
	TotalSwap      int64                    `json:"total_swap"`
	Uptime         int64                    `json:"uptime"`
	AWSMetadata    *AWSInstanceMetadata     `json:"aws_metadata"`
	IsAWSInstance  bool                     `json:"is_aws_instance"`
	SystemDiskIO   map[string]DiskStatistic `json:"system_disk_io"`
	EC2CostPerHour float64                  `json:"ec2_cost_per_hour"`
}

// WorkflowLog is the workflow-engine (Nextflow) session record.
type WorkflowLog struct {
	SessionUUID string   `json:"session_uuid"`
	JobIDs      []string `json:"jobs_ids"`
}

func (ProcessProperties) Kind() AttributeKind { return KindProcess }
func (SystemMetric) Kind() AttributeKind      { return KindSystemMetric }
func (SyslogProperties) Kind() AttributeKind  { return KindSyslog }
func (SystemProperties) Kind() AttributeKind  { return KindSystemProperties }
func (WorkflowLog) Kind() AttributeKind       { return KindWorkflowLog }

func (ProcessProperties) isAttributes() {}
func (SystemMetric) isAttributes()      {}
func (SyslogProperties) isAttributes()  {}
func (SystemProperties) isAttributes()  {}
func (WorkflowLog) isAttributes()       {}
