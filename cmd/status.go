package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/cache"
	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/learning"
	"github.com/zpam/sentimento/pkg/textnorm"
)

var (
	statusConfig string
	statusJSON   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show model artifacts and cache health",
	Long: `Display the state of the installation:
- Prepared corpus and model artifacts
- Training metadata (model id, date, accuracy, classes)
- Prediction cache connectivity
- Health recommendations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(statusConfig)
		if err != nil {
			return err
		}
		defer closeLog()

		status := collectStatus(cmd.Context(), cfg)
		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		printStatusDashboard(status)
		return nil
	},
}

// SystemStatus holds everything the status command reports
type SystemStatus struct {
	ConfigFile string         `json:"config_file,omitempty"`
	Corpus     FileStatus     `json:"corpus"`
	Model      ModelStatus    `json:"model"`
	Cache      DependencyInfo `json:"cache"`
	Health     HealthStatus   `json:"health"`
	Timestamp  time.Time      `json:"timestamp"`
}

type FileStatus struct {
	Path    string    `json:"path"`
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

type ModelStatus struct {
	Classifier FileStatus `json:"classifier"`
	Vectorizer FileStatus `json:"vectorizer"`

	Loaded           bool      `json:"loaded"`
	Error            string    `json:"error,omitempty"`
	ModelID          string    `json:"model_id,omitempty"`
	TrainedAt        time.Time `json:"trained_at,omitempty"`
	Accuracy         float64   `json:"accuracy,omitempty"`
	TrainSize        int       `json:"train_size,omitempty"`
	TestSize         int       `json:"test_size,omitempty"`
	Classes          []string  `json:"classes,omitempty"`
	VocabularySize   int       `json:"vocabulary_size,omitempty"`
	Converged        bool      `json:"converged"`
	StopwordsMatch   bool      `json:"stopwords_match"`
	ArtifactsMatched bool      `json:"artifacts_matched"`
}

type DependencyInfo struct {
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
	Status    string `json:"status"`
}

type HealthStatus struct {
	Overall         string   `json:"overall"`
	Issues          []string `json:"issues"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

func collectStatus(ctx context.Context, cfg *config.Config) *SystemStatus {
	status := &SystemStatus{
		ConfigFile: statusConfig,
		Corpus:     statFile(cfg.Data.ProcessedPath),
		Model:      collectModelStatus(cfg),
		Cache:      collectCacheStatus(ctx, cfg.Cache),
		Timestamp:  time.Now(),
	}
	status.Health = assessHealth(status)
	return status
}

func statFile(path string) FileStatus {
	fs := FileStatus{Path: path}
	if info, err := os.Stat(path); err == nil {
		fs.Exists = true
		fs.Size = info.Size()
		fs.ModTime = info.ModTime()
	}
	return fs
}

func collectModelStatus(cfg *config.Config) ModelStatus {
	status := ModelStatus{
		Classifier: statFile(cfg.Model.ClassifierPath),
		Vectorizer: statFile(cfg.Model.VectorizerPath),
	}
	if !status.Classifier.Exists || !status.Vectorizer.Exists {
		return status
	}

	vectorizer, err := learning.LoadVectorizer(cfg.Model.VectorizerPath)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	classifier, info, err := learning.LoadClassifier(cfg.Model.ClassifierPath)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Loaded = true
	status.ModelID = info.ModelID
	status.TrainedAt = info.TrainedAt
	status.Accuracy = info.Accuracy
	status.TrainSize = info.TrainSize
	status.TestSize = info.TestSize
	status.Classes = classifier.Classes
	status.VocabularySize = vectorizer.NumFeatures()
	status.Converged = classifier.Converged
	status.ArtifactsMatched = vectorizer.ModelID == info.ModelID &&
		classifier.NumFeatures == vectorizer.NumFeatures()

	if normalizer, err := textnorm.Load(cfg.Text.StopwordsFile); err == nil {
		status.StopwordsMatch = vectorizer.StopwordFingerprint == "" ||
			vectorizer.StopwordFingerprint == normalizer.Fingerprint()
	}

	return status
}

func collectCacheStatus(ctx context.Context, cfg config.CacheConfig) DependencyInfo {
	if !cfg.Enabled {
		return DependencyInfo{Status: "Disabled"}
	}

	c, err := cache.NewRedisCache(cfg)
	if err != nil {
		return DependencyInfo{Enabled: true, Status: err.Error()}
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		return DependencyInfo{Enabled: true, Status: err.Error()}
	}
	return DependencyInfo{Enabled: true, Available: true, Status: "Connected to " + cfg.RedisURL}
}

func assessHealth(status *SystemStatus) HealthStatus {
	health := HealthStatus{
		Issues:          []string{},
		Warnings:        []string{},
		Recommendations: []string{},
	}

	model := status.Model
	switch {
	case !model.Classifier.Exists || !model.Vectorizer.Exists:
		health.Issues = append(health.Issues, "Model artifacts not found")
		if !status.Corpus.Exists {
			health.Recommendations = append(health.Recommendations, "Prepare the corpus with: sentimento prepare")
		}
		health.Recommendations = append(health.Recommendations, "Train a model with: sentimento train")
	case !model.Loaded:
		health.Issues = append(health.Issues, "Model artifacts cannot be loaded: "+model.Error)
		health.Recommendations = append(health.Recommendations, "Retrain with: sentimento train")
	default:
		if !model.ArtifactsMatched {
			health.Issues = append(health.Issues, "Classifier and vectorizer come from different training runs")
			health.Recommendations = append(health.Recommendations, "Retrain so both artifacts are written together")
		}
		if !model.StopwordsMatch {
			health.Warnings = append(health.Warnings, "Stopword list differs from the one used in training")
		}
		if !model.Converged {
			health.Warnings = append(health.Warnings, "Optimizer stopped before converging")
			health.Recommendations = append(health.Recommendations, "Increase training.max_iter")
		}
	}

	if status.Cache.Enabled && !status.Cache.Available {
		health.Warnings = append(health.Warnings, "Prediction cache enabled but Redis is unreachable")
		health.Recommendations = append(health.Recommendations, "Start Redis or set cache.enabled: false")
	}

	if len(health.Issues) > 0 {
		health.Overall = "CRITICAL"
	} else if len(health.Warnings) > 0 {
		health.Overall = "WARNING"
	} else {
		health.Overall = "HEALTHY"
	}

	return health
}

func printStatusDashboard(status *SystemStatus) {
	fmt.Printf("🧠 Sentimento Status\n")
	fmt.Printf("═══════════════════════════════════════\n\n")

	if status.ConfigFile != "" {
		fmt.Printf("⚙️  Config: %s\n\n", status.ConfigFile)
	}

	fmt.Printf("📄 Data\n")
	printFile("Prepared corpus", status.Corpus)
	fmt.Printf("\n")

	fmt.Printf("📦 Model\n")
	printFile("Classifier", status.Model.Classifier)
	printFile("Vectorizer", status.Model.Vectorizer)
	if m := status.Model; m.Loaded {
		fmt.Printf("  Model ID: %s\n", m.ModelID)
		fmt.Printf("  Trained: %s (%s)\n", m.TrainedAt.Format("2006-01-02 15:04:05"), formatTimeAgo(m.TrainedAt))
		fmt.Printf("  Accuracy: %.2f%% on %d held-out rows\n", m.Accuracy*100, m.TestSize)
		fmt.Printf("  Train rows: %d\n", m.TrainSize)
		fmt.Printf("  Classes: %s\n", strings.Join(m.Classes, ", "))
		fmt.Printf("  Vocabulary: %d terms\n", m.VocabularySize)
	} else if m.Error != "" {
		fmt.Printf("  ❌ %s\n", m.Error)
	}
	fmt.Printf("\n")

	fmt.Printf("🔧 Dependencies\n")
	icon := "✅"
	if status.Cache.Enabled && !status.Cache.Available {
		icon = "❌"
	} else if !status.Cache.Enabled {
		icon = "➖"
	}
	fmt.Printf("  %s Redis cache: %s\n\n", icon, status.Cache.Status)

	healthIcon := "✅"
	if status.Health.Overall == "WARNING" {
		healthIcon = "⚠️"
	} else if status.Health.Overall == "CRITICAL" {
		healthIcon = "❌"
	}
	fmt.Printf("🏥 Health Assessment: %s %s\n", healthIcon, status.Health.Overall)

	if len(status.Health.Issues) > 0 {
		fmt.Printf("\n❌ Issues:\n")
		for _, issue := range status.Health.Issues {
			fmt.Printf("  • %s\n", issue)
		}
	}

	if len(status.Health.Warnings) > 0 {
		fmt.Printf("\n⚠️  Warnings:\n")
		for _, warning := range status.Health.Warnings {
			fmt.Printf("  • %s\n", warning)
		}
	}

	if len(status.Health.Recommendations) > 0 {
		fmt.Printf("\n💡 Recommendations:\n")
		for _, rec := range status.Health.Recommendations {
			fmt.Printf("  • %s\n", rec)
		}
	}

	fmt.Printf("\nLast updated: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))
}

func printFile(name string, fs FileStatus) {
	if !fs.Exists {
		fmt.Printf("  ❌ %s: %s (missing)\n", name, fs.Path)
		return
	}
	fmt.Printf("  ✅ %s: %s (%s)\n", name, fs.Path, formatSize(fs.Size))
}

func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	if n < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
}

func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)
	if duration < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
	}
	if duration < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(duration.Hours()))
	}
	days := int(duration.Hours() / 24)
	return fmt.Sprintf("%d days ago", days)
}

func init() {
	statusCmd.Flags().StringVarP(&statusConfig, "config", "c", "", "Configuration file path")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status in JSON format")
}
