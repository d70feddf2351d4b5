package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Job is the processing record for a single input video. It only lives in
// memory for the duration of the run; the produced files are the output.
type Job struct {
	ID             uuid.UUID
	VideoPath      string
	VideoName      string
	Mode           Mode
	Status         JobStatus
	FrameCount     int
	DetectionCount int
	VideoDuration  float64
	ArchiveKey     string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

func NewJob(videoPath, videoName string, mode Mode) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.New(),
		VideoPath: videoPath,
		VideoName: videoName,
		Mode:      mode,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

func (j *Job) MarkCompleted(frameCount, detectionCount int, duration float64) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.FrameCount = frameCount
	j.DetectionCount = detectionCount
	j.VideoDuration = duration
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *Job) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

// Report summarizes a whole batch run for the final console output.
type Report struct {
	Mode            Mode
	VideosCompleted int
	VideosFailed    int
	FramesTotal     int
	DetectionsTotal int
	Jobs            []*Job
}

func (r *Report) Add(job *Job) {
	r.Jobs = append(r.Jobs, job)
	switch job.Status {
	case JobStatusCompleted:
		r.VideosCompleted++
		r.FramesTotal += job.FrameCount
		r.DetectionsTotal += job.DetectionCount
	case JobStatusFailed:
		r.VideosFailed++
	}
}
