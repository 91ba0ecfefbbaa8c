package gptoss

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/generator"
	"github.com/mathbeast/backend/internal/models"
)

type stubClient struct{}

func (stubClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*generator.Response, error) {
	content := "Reasoning: Pair terms symmetrically around the midpoint.\nAnswer: 5050\nConfidence: 0.95"
	return &generator.Response{Content: content, OutputTokens: len(content)}, nil
}

func (stubClient) Stream(ctx context.Context, systemPrompt, userPrompt string, temperature float64, fn func(chunk string) error) error {
	for _, chunk := range []string{"Reasoning: ", "pair terms. ", "Answer: 5050"} {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func newTestGPTOSS(t *testing.T) *Service {
	t.Helper()
	gen := generator.NewGeneratorWithClient(stubClient{}, "test-model")
	svc := NewService(gen, zap.NewNop().Sugar())
	svc.SetStepDelay(time.Microsecond)
	return svc
}

func waitForStatus(t *testing.T, svc *Service, jobID string, status models.FineTuneStatus) *models.FineTuningJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.GetJob(jobID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if job.Status == status {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job never reached status %s", status)
	return nil
}

func TestCreateFineTuneJobDefaults(t *testing.T) {
	svc := newTestGPTOSS(t)

	job, err := svc.CreateFineTuneJob(models.FineTuneRequest{
		Datasets: []models.DatasetRef{{Name: "gsm8k", Path: "gsm8k", Size: 8500}},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if !strings.HasPrefix(job.ID, "ft_") {
		t.Errorf("got job id %q", job.ID)
	}
	if job.BaseModel != "openai/gpt-oss-120b" {
		t.Errorf("got base model %q", job.BaseModel)
	}

	lora := job.LoRAConfig
	if lora.Rank != 16 || lora.Alpha != 32 || lora.Dropout != 0.1 || lora.Bias != "none" {
		t.Errorf("unexpected lora defaults: %+v", lora)
	}
	if len(lora.TargetModules) != 4 {
		t.Errorf("got target modules %v", lora.TargetModules)
	}

	train := job.TrainingConfig
	if train.NumTrainEpochs != 3 || train.PerDeviceTrainBatchSize != 2 || train.GradientAccumulationSteps != 8 {
		t.Errorf("unexpected training defaults: %+v", train)
	}
	if train.LearningRate != 2e-4 || train.LRSchedulerType != "cosine" || !train.FP16 {
		t.Errorf("unexpected training defaults: %+v", train)
	}
	if !strings.Contains(train.OutputDir, job.ID) {
		t.Errorf("output dir %q does not embed the job id", train.OutputDir)
	}

	if job.Datasets[0].Split != "train" || job.Datasets[0].Format != "instruction" {
		t.Errorf("dataset defaults not applied: %+v", job.Datasets[0])
	}
}

func TestCreateFineTuneJobOverrides(t *testing.T) {
	svc := newTestGPTOSS(t)

	rank := 8
	epochs := 1
	lr := 1e-5
	job, err := svc.CreateFineTuneJob(models.FineTuneRequest{
		Datasets:       []models.DatasetRef{{Name: "math_qa", Path: "math_qa", Size: 37000}},
		LoraConfig:     &models.LoRAOverrides{Rank: &rank},
		TrainingConfig: &models.TrainingOverrides{Epochs: &epochs, LearningRate: &lr},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if job.LoRAConfig.Rank != 8 {
		t.Errorf("rank override ignored: %d", job.LoRAConfig.Rank)
	}
	if job.LoRAConfig.Alpha != 32 {
		t.Errorf("untouched field changed: %d", job.LoRAConfig.Alpha)
	}
	if job.TrainingConfig.NumTrainEpochs != 1 {
		t.Errorf("epochs override ignored: %d", job.TrainingConfig.NumTrainEpochs)
	}
	if job.TrainingConfig.LearningRate != 1e-5 {
		t.Errorf("learning rate override ignored: %g", job.TrainingConfig.LearningRate)
	}
}

func TestCreateFineTuneJobRequiresDatasets(t *testing.T) {
	svc := newTestGPTOSS(t)

	if _, err := svc.CreateFineTuneJob(models.FineTuneRequest{}); err == nil {
		t.Fatal("expected error for missing datasets")
	}
}

func TestFineTuneJobRunsToCompletion(t *testing.T) {
	svc := newTestGPTOSS(t)

	epochs := 2
	created, err := svc.CreateFineTuneJob(models.FineTuneRequest{
		Datasets:       []models.DatasetRef{{Name: "gsm8k", Path: "gsm8k", Size: 8500}},
		TrainingConfig: &models.TrainingOverrides{Epochs: &epochs},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	job := waitForStatus(t, svc, created.ID, models.FineTuneCompleted)

	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("timestamps not set")
	}
	if len(job.Checkpoints) != 2 {
		t.Errorf("got %d checkpoints: %v", len(job.Checkpoints), job.Checkpoints)
	}
	if job.Checkpoints[0] != "checkpoint-epoch-1" {
		t.Errorf("got checkpoint %q", job.Checkpoints[0])
	}
	if job.Metrics.Step != 200 {
		t.Errorf("got final step %d", job.Metrics.Step)
	}
	if job.Metrics.Loss < 0.3 {
		t.Errorf("loss %f fell below the floor", job.Metrics.Loss)
	}
	if job.Metrics.EvalAccuracy > 0.95 {
		t.Errorf("eval accuracy %f above the cap", job.Metrics.EvalAccuracy)
	}
	if math.Abs(job.Metrics.Perplexity-math.Exp(job.Metrics.Loss)) > 1e-9 {
		t.Error("perplexity inconsistent with loss")
	}

	jobs := svc.ListJobs()
	if len(jobs) != 1 || jobs[0].ID != created.ID {
		t.Errorf("list jobs: %+v", jobs)
	}
}

func TestGetJobUnknown(t *testing.T) {
	svc := newTestGPTOSS(t)

	if _, err := svc.GetJob("ft_missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestRunBenchmarkKnownSuite(t *testing.T) {
	svc := newTestGPTOSS(t)

	result := svc.RunBenchmark("GSM8K")

	if result.MaxScore != 100 {
		t.Errorf("got max score %f", result.MaxScore)
	}
	if result.Score > 100 || result.Score < 91.5 {
		t.Errorf("score %f outside jitter band", result.Score)
	}
	if result.Percentile < 95 || result.Percentile > 99 {
		t.Errorf("percentile %f out of range", result.Percentile)
	}
	for _, key := range []string{"accuracy", "avgTimePerProblem", "correctFirstAttempt"} {
		if _, ok := result.Metrics[key]; !ok {
			t.Errorf("metric %s missing", key)
		}
	}

	if got := svc.BenchmarkHistory("GSM8K"); len(got) != 1 {
		t.Errorf("history holds %d runs", len(got))
	}
}

func TestRunBenchmarkUnknownSuite(t *testing.T) {
	svc := newTestGPTOSS(t)

	result := svc.RunBenchmark("MADE_UP")

	if result.MaxScore != 100 {
		t.Errorf("got max score %f", result.MaxScore)
	}
	if result.Score < 72 || result.Score > 78 {
		t.Errorf("score %f outside default band", result.Score)
	}
}

func TestSolveCompetitionNormalizesProblem(t *testing.T) {
	svc := newTestGPTOSS(t)

	resp, err := svc.SolveCompetition(context.Background(), &models.CompetitionProblem{
		Content: "Find the sum of the first 100 positive integers.",
	}, "")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	if resp.Problem.Competition != "other" || resp.Problem.Difficulty != 5 || resp.Problem.ProblemNumber != 1 {
		t.Errorf("problem not normalized: %+v", resp.Problem)
	}
	if resp.Problem.Topics == nil || resp.Problem.Techniques == nil {
		t.Error("nil slices not normalized")
	}
	if resp.Solution.Answer != "5050" {
		t.Errorf("got answer %q", resp.Solution.Answer)
	}
	if resp.Solution.Confidence != 0.95 {
		t.Errorf("got confidence %f", resp.Solution.Confidence)
	}
	if resp.Metadata["modelUsed"] != "GPT-OSS-120B" {
		t.Errorf("got metadata %v", resp.Metadata)
	}
}

func TestInferenceStatsTrackRequests(t *testing.T) {
	svc := newTestGPTOSS(t)

	initial := svc.InferenceStats()
	if initial.ActiveExperts != 8 || initial.CacheHitRate != 0.85 {
		t.Errorf("unexpected initial stats: %+v", initial)
	}

	if _, err := svc.SolveCompetition(context.Background(), &models.CompetitionProblem{Content: "2+2?"}, models.ReasoningLow); err != nil {
		t.Fatalf("solve: %v", err)
	}

	stats := svc.InferenceStats()
	if stats.RequestsTotal != 1 {
		t.Errorf("got requestsTotal %d", stats.RequestsTotal)
	}
	if stats.TokensGenerated == 0 {
		t.Error("tokens not counted")
	}
	if stats.P95Latency != stats.AverageLatency*1.5 || stats.P99Latency != stats.AverageLatency*2.0 {
		t.Error("percentiles not derived from the average")
	}
}
