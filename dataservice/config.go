package dataservice

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/pingcap/log"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hanfei1991/dataservice/lib/config"
	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

const (
	// unsetInt is the flag and file value of an integer option that was not
	// given. JobParams turns it into an absent model.Optional, or AUTO for
	// max-outstanding-requests, so -1 never reaches the dispatcher.
	unsetInt = -1
)

var validate = validator.New()

// NewConfig creates a config with default values and its flag set.
func NewConfig() *Config {
	cfg := &Config{
		Dataset: DatasetConfig{},
	}
	cfg.flagSet = pflag.NewFlagSet("dataservice", pflag.ContinueOnError)
	fs := cfg.flagSet

	fs.StringVar(&cfg.ConfigFile, "config", "", "path to config file")
	fs.StringVarP(&cfg.LogLevel, "log-level", "L", "info", "log level: debug, info, warn, error, fatal")
	fs.StringVar(&cfg.LogFile, "log-file", "", "log file path")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", `the format of the log, "text" or "json"`)
	fs.StringVar(&cfg.StatusAddr, "status-addr", "", "address to serve metrics on, disabled if empty")

	fs.StringVar(&cfg.Service, "service", "", `dispatcher address, "[protocol://]address"`)
	fs.StringVar(&cfg.DefaultProtocol, "default-protocol", model.DefaultProtocol, "protocol used when the service names none")
	fs.StringVar(&cfg.ProcessingMode, "processing-mode", "parallel_epochs", "parallel_epochs or distributed_epoch")
	fs.StringVar(&cfg.JobName, "job-name", "", "name of a job shared by several consumers")
	fs.Int64Var(&cfg.ConsumerIndex, "consumer-index", unsetInt, "index of this consumer in a round-robin read, -1 if unset")
	fs.Int64Var(&cfg.NumConsumers, "num-consumers", unsetInt, "number of consumers of a round-robin read, -1 if unset")
	fs.Int64Var(&cfg.MaxOutstandingRequests, "max-outstanding-requests", unsetInt, "bound of in-flight element requests, -1 for AUTO")
	fs.Int64Var(&cfg.PipeliningDepthPerWorker, "pipelining-depth-per-worker", DefaultPipeliningDepthPerWorker, "concurrent element requests per worker")
	fs.DurationVar(&cfg.TaskRefreshInterval.Duration, "task-refresh-interval", 0, "interval of task list refreshes, 0 for AUTO")
	fs.StringVar(&cfg.DataTransferProtocol, "data-transfer-protocol", "", "protocol used to read elements from workers")
	fs.StringVar(&cfg.Compression, "compression", "AUTO", "AUTO or NONE")
	fs.StringVar(&cfg.TargetWorkers, "target-workers", "AUTO", "AUTO, ANY or LOCAL")
	fs.StringVar(&cfg.ExternalStatePolicy, "external-state-policy", "", "WARN, IGNORE or FAIL")

	fs.Int64Var(&cfg.Dataset.ID, "dataset-id", unsetInt, "id of a registered dataset to read, -1 to register one")
	fs.Int64Var(&cfg.Dataset.Range, "range", 10, "the registered pipeline produces [0, range)")
	fs.Int64Var(&cfg.Dataset.Repeat, "repeat", 1, "repetitions of the range, -1 repeats forever")
	fs.Int64Var(&cfg.Dataset.Take, "take", unsetInt, "number of elements to read, -1 reads to the end")

	return cfg
}

// Duration is a time.Duration encoded as a string such as "1s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DatasetConfig describes the dataset the command line tool registers or
// reads.
type DatasetConfig struct {
	ID     int64 `toml:"id" json:"id" validate:"gte=-1"`
	Range  int64 `toml:"range" json:"range" validate:"gte=0"`
	Repeat int64 `toml:"repeat" json:"repeat" validate:"gte=-1"`
	Take   int64 `toml:"take" json:"take" validate:"gte=-1"`
}

// Config is the configuration of a dataservice consumer.
type Config struct {
	flagSet *pflag.FlagSet

	LogLevel   string `toml:"log-level" json:"log-level" validate:"oneof=debug info warn error fatal"`
	LogFile    string `toml:"log-file" json:"log-file"`
	LogFormat  string `toml:"log-format" json:"log-format" validate:"oneof=text json"`
	StatusAddr string `toml:"status-addr" json:"status-addr" validate:"omitempty,hostname_port"`

	ConfigFile string `toml:"config-file" json:"config-file"`

	Service                  string   `toml:"service" json:"service" validate:"required"`
	DefaultProtocol          string   `toml:"default-protocol" json:"default-protocol" validate:"required"`
	ProcessingMode           string   `toml:"processing-mode" json:"processing-mode" validate:"oneof=parallel_epochs distributed_epoch"`
	JobName                  string   `toml:"job-name" json:"job-name"`
	ConsumerIndex            int64    `toml:"consumer-index" json:"consumer-index" validate:"gte=-1"`
	NumConsumers             int64    `toml:"num-consumers" json:"num-consumers" validate:"gte=-1"`
	MaxOutstandingRequests   int64    `toml:"max-outstanding-requests" json:"max-outstanding-requests" validate:"gte=-1"`
	PipeliningDepthPerWorker int64    `toml:"pipelining-depth-per-worker" json:"pipelining-depth-per-worker" validate:"gte=1"`
	TaskRefreshInterval      Duration `toml:"task-refresh-interval" json:"task-refresh-interval"`
	DataTransferProtocol     string   `toml:"data-transfer-protocol" json:"data-transfer-protocol"`
	Compression              string   `toml:"compression" json:"compression" validate:"oneof=AUTO NONE"`
	TargetWorkers            string   `toml:"target-workers" json:"target-workers"`
	ExternalStatePolicy      string   `toml:"external-state-policy" json:"external-state-policy"`

	Dataset DatasetConfig `toml:"dataset" json:"dataset"`

	Timeouts config.ReaderTimeoutConfig `toml:"-" json:"-"`
}

func (c *Config) String() string {
	cfg, err := json.Marshal(c)
	if err != nil {
		log.L().Error("marshal config to json", zap.Reflect("config", c), zap.Error(err))
	}
	return string(cfg)
}

// Toml returns TOML format representation of config.
func (c *Config) Toml() (string, error) {
	var b bytes.Buffer

	err := toml.NewEncoder(&b).Encode(c)
	if err != nil {
		log.L().Error("fail to marshal config to toml", zap.Error(err))
		return "", errors.Wrap(errors.ErrConfigInvalid, err, err.Error())
	}

	return b.String(), nil
}

// FlagSet returns the flags of the config.
func (c *Config) FlagSet() *pflag.FlagSet {
	return c.flagSet
}

// Parse parses flag definitions from the argument list. Values from the
// config file are overridden by the command line.
func (c *Config) Parse(arguments []string) error {
	// Parse first to get config file.
	err := c.flagSet.Parse(arguments)
	if err != nil {
		return errors.Wrap(errors.ErrConfigParseFlagSet, err)
	}

	// Load config file if specified.
	if c.ConfigFile != "" {
		err = c.configFromFile(c.ConfigFile)
		if err != nil {
			return err
		}
	}

	// Parse again to replace with command line options.
	err = c.flagSet.Parse(arguments)
	if err != nil {
		return errors.Wrap(errors.ErrConfigParseFlagSet, err)
	}

	if len(c.flagSet.Args()) != 0 {
		return errors.ErrConfigInvalid.GenWithStackByArgs("unexpected argument " + c.flagSet.Arg(0))
	}
	return c.adjust()
}

func (c *Config) adjust() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, err, err.Error())
	}
	c.Timeouts = config.DefaultReaderTimeoutConfig()
	if c.TaskRefreshInterval.Duration > 0 {
		c.Timeouts.TaskRefreshInterval = c.TaskRefreshInterval.Duration
		c.Timeouts = c.Timeouts.Adjust()
	}
	_, err := c.Options()
	return err
}

// configFromFile loads config from file.
func (c *Config) configFromFile(path string) error {
	metaData, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrConfigDecodeFile, err)
	}
	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return errors.ErrConfigUnknownItem.GenWithStackByArgs(strings.Join(undecodedItems, ","))
	}
	return nil
}

// JobParams converts the job items of the config. Unset items are left to
// BuildJobSpec.
func (c *Config) JobParams() (JobParams, error) {
	mode, err := model.ParseProcessingMode(c.ProcessingMode)
	if err != nil {
		return JobParams{}, err
	}
	params := JobParams{
		ProcessingMode:           mode,
		PipeliningDepthPerWorker: model.Some(c.PipeliningDepthPerWorker),
	}
	if c.JobName != "" {
		params.JobName = model.Some(c.JobName)
	}
	if c.ConsumerIndex != unsetInt {
		params.ConsumerIndex = model.Some(c.ConsumerIndex)
	}
	if c.NumConsumers != unsetInt {
		params.NumConsumers = model.Some(c.NumConsumers)
	}
	if c.MaxOutstandingRequests != unsetInt {
		params.MaxOutstandingRequests = model.Value(c.MaxOutstandingRequests)
	}
	if c.TaskRefreshInterval.Duration != 0 {
		params.TaskRefreshInterval = model.Value(c.TaskRefreshInterval.Duration)
	}
	params.TargetWorkers, err = model.ParseTargetWorkers(c.TargetWorkers)
	if err != nil {
		return JobParams{}, err
	}
	return params, nil
}

// Options converts the config into the options of Distribute and
// FromDatasetID, validating the job parameters.
func (c *Config) Options() (Options, error) {
	params, err := c.JobParams()
	if err != nil {
		return Options{}, err
	}
	if _, err := BuildJobSpec(params); err != nil {
		return Options{}, err
	}
	compressionMode, err := model.ParseCompressionMode(c.Compression)
	if err != nil {
		return Options{}, err
	}
	policy, err := model.ParseExternalStatePolicy(c.ExternalStatePolicy)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Service:             c.Service,
		DefaultProtocol:     c.DefaultProtocol,
		Job:                 params,
		Compression:         compressionMode,
		ExternalStatePolicy: policy,
	}
	if c.DataTransferProtocol != "" {
		opts.DataTransferProtocol = model.Some(c.DataTransferProtocol)
	}
	timeouts := c.Timeouts
	opts.Timeouts = &timeouts
	return opts, nil
}
