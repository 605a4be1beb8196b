package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/E-CAM/presentation-extractor/internal/domain/entity"
	"github.com/E-CAM/presentation-extractor/internal/domain/port"
	"github.com/E-CAM/presentation-extractor/internal/infra/metrics"
	"github.com/E-CAM/presentation-extractor/internal/slides"
)

type AnalyzeVideoUseCase struct {
	repo      port.JobRepository
	storage   port.VideoStorage
	decoder   port.VideoDecoder
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	defaults  slides.Settings
	siteMasks []slides.MaskSpec
	tempDir   string
	maxRetry  int
}

type AnalyzeVideoConfig struct {
	TempDir    string
	MaxRetries int
	Defaults   slides.Settings
	SiteMasks  []slides.MaskSpec
}

func NewAnalyzeVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	decoder port.VideoDecoder,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeVideoConfig,
) *AnalyzeVideoUseCase {
	return &AnalyzeVideoUseCase{
		repo:      repo,
		storage:   storage,
		decoder:   decoder,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		defaults:  cfg.Defaults,
		siteMasks: cfg.SiteMasks,
		tempDir:   cfg.TempDir,
		maxRetry:  cfg.MaxRetries,
	}
}

func (uc *AnalyzeVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.VideoAnalysisMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewAnalysisJob(msg.UserID, msg.VideoKey, msg.FileSize, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	// Settings problems never fix themselves on retry.
	settings, masks, err := uc.resolveSettings(msg.Parameters)
	if err != nil {
		log.Warn("rejected analysis parameters", zap.Error(err))
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "invalid_parameters: "+err.Error())
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.analysisPipeline(ctx, job, msg, rawMsg, settings, masks, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobProcessingDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

// resolveSettings layers the per-request parameter document over the
// site-wide defaults. Request masks replace the site masks entirely when
// present.
func (uc *AnalyzeVideoUseCase) resolveSettings(params json.RawMessage) (slides.Settings, []slides.MaskSpec, error) {
	settings := uc.defaults
	masks := uc.siteMasks

	if len(params) > 0 {
		overrides, err := slides.ParseOverrides(params)
		if err != nil {
			return settings, nil, err
		}
		settings = settings.Apply(overrides.Slides)
		if overrides.Masks != nil {
			masks = overrides.Masks
		}
	}

	if err := settings.Validate(); err != nil {
		return settings, nil, err
	}
	return settings, masks, nil
}

func (uc *AnalyzeVideoUseCase) analysisPipeline(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.VideoAnalysisMessage,
	rawMsg []byte,
	settings slides.Settings,
	masks []slides.MaskSpec,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from MinIO
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobProcessingDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Probe dimensions and frame rate
	ctx3, spanPr := tracer.Start(ctx, "probe_video")
	info, err := uc.decoder.Probe(ctx3, videoPath)
	spanPr.End()
	if err != nil {
		log.Error("video probe failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "probe_video: "+err.Error(), log)
	}

	// Masks that fall outside this video are a parameter problem, not a
	// transient one.
	if _, err := slides.CompileMasks(masks, image.Rect(0, 0, info.Width, info.Height)); err != nil {
		log.Warn("masks do not fit video", zap.Error(err))
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "invalid_parameters: "+err.Error())
		return nil
	}

	// Stream frames through the detector
	segStart := time.Now()
	ctx4, spanSeg := tracer.Start(ctx, "segment_slides")
	result, segErr := uc.segment(ctx4, videoPath, info, settings, masks)
	spanSeg.End()
	if segErr != nil {
		var confErr *slides.ConfigurationError
		if errors.As(segErr, &confErr) {
			log.Warn("rejected analysis parameters", zap.Error(segErr))
			_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "invalid_parameters: "+segErr.Error())
			return nil
		}
		log.Error("slide segmentation failed", zap.Error(segErr))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "segment_slides: "+segErr.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("segment").Observe(time.Since(segStart).Seconds())
	metrics.SlidesDetectedTotal.Add(float64(result.NrSlides()))

	// Render and upload a still per slide
	upStart := time.Now()
	ctx5, spanUp := tracer.Start(ctx, "upload_previews")
	previewIDs, err := uc.uploadPreviews(ctx5, job, msg, videoPath, workDir, result)
	spanUp.End()
	if err != nil {
		log.Error("preview upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_previews: "+err.Error(), log)
	}
	metrics.JobProcessingDuration.WithLabelValues("previews").Observe(time.Since(upStart).Seconds())

	// Publish metadata document and chapter track
	metadataKey, err := uc.uploadDocuments(ctx, msg, job, result, previewIDs)
	if err != nil {
		log.Error("metadata upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_metadata: "+err.Error(), log)
	}

	// Mark completed
	job.MarkCompleted(metadataKey, result.Algorithm, result.NrSlides(), info.Duration)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("slide_count", result.NrSlides()),
		zap.String("algorithm", string(result.Algorithm)),
		zap.Float64("duration_secs", info.Duration),
		zap.String("metadata_key", metadataKey),
	)

	return nil
}

func (uc *AnalyzeVideoUseCase) segment(
	ctx context.Context,
	videoPath string,
	info *port.VideoInfo,
	settings slides.Settings,
	masks []slides.MaskSpec,
) (*slides.Result, error) {
	src, closeStream, err := uc.decoder.OpenFrames(ctx, videoPath, info)
	if err != nil {
		return nil, fmt.Errorf("open frame stream: %w", err)
	}
	defer closeStream()

	counted := &countingSource{src: src}
	result, err := slides.Segment(ctx, counted, settings, masks)
	metrics.FramesAnalyzedTotal.Add(float64(counted.n))
	if err != nil {
		return nil, err
	}
	return result, nil
}

type countingSource struct {
	src slides.FrameSource
	n   int
}

func (c *countingSource) Next() (*slides.Frame, error) {
	f, err := c.src.Next()
	if err == nil {
		c.n++
	}
	return f, err
}

func (uc *AnalyzeVideoUseCase) uploadPreviews(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.VideoAnalysisMessage,
	videoPath, workDir string,
	result *slides.Result,
) ([]string, error) {
	previewIDs := make([]string, 0, result.NrSlides())
	for i, slide := range result.Slides {
		stillPath := filepath.Join(workDir, fmt.Sprintf("slide_%04d.png", i+1))
		if err := uc.decoder.Snapshot(ctx, videoPath, slide.Midpoint(), stillPath); err != nil {
			return nil, fmt.Errorf("snapshot slide %d: %w", i+1, err)
		}

		objectKey := fmt.Sprintf("%s/%s/slide_%04d.png", msg.UserID, job.ID.String(), i+1)
		previewID, err := uc.storage.UploadPreview(ctx, objectKey, stillPath)
		if err != nil {
			return nil, fmt.Errorf("upload slide %d: %w", i+1, err)
		}
		previewIDs = append(previewIDs, previewID)

		// The first slide doubles as the video thumbnail.
		if i == 0 {
			thumbKey := fmt.Sprintf("%s/%s/thumbnail.png", msg.UserID, job.ID.String())
			if _, err := uc.storage.UploadPreview(ctx, thumbKey, stillPath); err != nil {
				return nil, fmt.Errorf("upload thumbnail: %w", err)
			}
		}
	}
	return previewIDs, nil
}

func (uc *AnalyzeVideoUseCase) uploadDocuments(
	ctx context.Context,
	msg entity.VideoAnalysisMessage,
	job *entity.AnalysisJob,
	result *slides.Result,
	previewIDs []string,
) (string, error) {
	meta, err := result.Metadata(previewIDs)
	if err != nil {
		return "", fmt.Errorf("build metadata: %w", err)
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	metadataKey := fmt.Sprintf("%s/%s/slides.json", msg.UserID, job.ID.String())
	err = uc.storage.UploadDocument(ctx, metadataKey, "application/json", bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("upload metadata: %w", err)
	}

	vtt := result.WebVTTChapters()
	vttKey := fmt.Sprintf("%s/%s/chapters.vtt", msg.UserID, job.ID.String())
	err = uc.storage.UploadDocument(ctx, vttKey, "text/vtt", strings.NewReader(vtt), int64(len(vtt)))
	if err != nil {
		return "", fmt.Errorf("upload chapters: %w", err)
	}

	return metadataKey, nil
}

func (uc *AnalyzeVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.VideoAnalysisMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *AnalyzeVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.VideoAnalysisMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *AnalyzeVideoUseCase) publishStatus(ctx context.Context, job *entity.AnalysisJob, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		VideoKey:     job.VideoKey,
		MetadataKey:  job.MetadataKey,
		SlideCount:   job.SlideCount,
		Algorithm:    string(job.Algorithm),
		Duration:     job.VideoDuration,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
