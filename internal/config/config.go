package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Preprocess PreprocessConfig `toml:"preprocess"`
	Classifier ClassifierConfig `toml:"classifier"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// PreprocessConfig 预处理配置
type PreprocessConfig struct {
	SampleRows          int      `toml:"sample_rows"`          // 送给分类策略的样本行数
	TypeThreshold       float64  `toml:"type_threshold"`       // 列类型推断成功率阈值
	SimilarityThreshold float64  `toml:"similarity_threshold"` // 实体-列相似度阈值
	CategoricalRatio    float64  `toml:"categorical_ratio"`    // 分类列去重值占比上限
	DatePatterns        []string `toml:"date_patterns"`        // 时间解析模式
	Workers             int      `toml:"workers"`              // 并行 sheet worker 数
}

// ClassifierConfig 外部分类服务配置；endpoint 为空时只用规则策略
type ClassifierConfig struct {
	Endpoint  string `toml:"endpoint"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20301,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Preprocess: PreprocessConfig{
			SampleRows:          15,
			TypeThreshold:       0.9,
			SimilarityThreshold: 0.6,
			CategoricalRatio:    0.5,
			Workers:             4,
		},
		Classifier: ClassifierConfig{
			Endpoint:  "",
			TimeoutMS: 5000,
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides 环境变量覆盖（用于 E2E / 本地运行）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("EXCELAGENT_CLASSIFIER_ENDPOINT"); v != "" {
		config.Classifier.Endpoint = v
	}
	if v := os.Getenv("EXCELAGENT_CLASSIFIER_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			config.Classifier.TimeoutMS = ms
		}
	}
	if v := os.Getenv("EXCELAGENT_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录及其子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	for _, subdir := range []string{"uploads", "db"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
