// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/relabs-tech/motion_events/internal/motion"
)

// Sample sources selectable with IMU_SOURCE.
const (
	SourceI2C    = "i2c"
	SourceSerial = "serial"
	SourceMock   = "mock"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicMotionReport string
	TopicMotionEvents string

	// IMU source
	IMUSource string // i2c, serial or mock
	IMUName   string
	IMUDevice string // register layout: mpu6050, mpu6500

	// IMU on I2C
	IMUI2CBus  string
	IMUI2CAddr uint16

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	IMUDLPFConfig    byte // 0-6
	IMUSampleRateDiv byte // output rate = 1 kHz / (1 + div)
	IMUWakeDelayMS   int

	// IMU streamed over a UART
	IMUSerialPort string
	IMUSerialBaud uint

	// Detector thresholds
	Motion motion.Config

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Event history, empty disables the store
	EventDBPath string

	// Web Server
	WebServerPort int

	// Register debug tool
	RegisterDebugPort     int
	RegisterDebugWritable string // e.g. "0x19-0x1C,0x6B"

	// Display
	DisplayI2CBus         string
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Defaults returns the configuration used for every key a file leaves out.
func Defaults() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "motion-producer",
		MQTTClientIDConsole:  "motion-console",
		MQTTClientIDWeb:      "motion-web",
		MQTTClientIDDisplay:  "motion-display",

		TopicMotionReport: "motion/report",
		TopicMotionEvents: "motion/events",

		IMUSource: SourceI2C,
		IMUName:   "main",
		IMUDevice: "mpu6050",

		IMUI2CBus:  "",
		IMUI2CAddr: 0x68,

		IMUDLPFConfig:    3,
		IMUSampleRateDiv: 7,
		IMUWakeDelayMS:   100,

		IMUSerialBaud: 115200,

		Motion: motion.DefaultConfig(),

		IMUSampleInterval:  20,
		ConsoleLogInterval: 1000,

		EventDBPath: "motion_events.db",

		WebServerPort: 8080,

		RegisterDebugPort:     8081,
		RegisterDebugWritable: "0x19-0x1C,0x6B",

		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 500,
	}
}

// Load reads a KEY=VALUE configuration file on top of Defaults.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return fromValues(values)
}

// Parse is Load for an already open file.
func Parse(r io.Reader) (*Config, error) {
	values, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return fromValues(values)
}

func fromValues(values map[string]string) (*Config, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Defaults()
	for _, key := range keys {
		if err := cfg.setValue(key, strings.TrimSpace(values[key])); err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_MOTION_REPORT":
		c.TopicMotionReport = value
	case "TOPIC_MOTION_EVENTS":
		c.TopicMotionEvents = value

	// IMU
	case "IMU_SOURCE":
		c.IMUSource = strings.ToLower(value)
	case "IMU_NAME":
		c.IMUName = value
	case "IMU_DEVICE":
		c.IMUDevice = strings.ToLower(value)
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 7)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)
	case "IMU_ACCEL_RANGE":
		v, err := parseByte(value, 3)
		if err != nil {
			return fmt.Errorf("IMU_ACCEL_RANGE (0=±2g, 1=±4g, 2=±8g, 3=±16g): %w", err)
		}
		c.IMUAccelRange = v
	case "IMU_GYRO_RANGE":
		v, err := parseByte(value, 3)
		if err != nil {
			return fmt.Errorf("IMU_GYRO_RANGE (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s): %w", err)
		}
		c.IMUGyroRange = v
	case "IMU_DLPF_CFG":
		v, err := parseByte(value, 6)
		if err != nil {
			return fmt.Errorf("IMU_DLPF_CFG: %w", err)
		}
		c.IMUDLPFConfig = v
	case "IMU_SMPLRT_DIV":
		v, err := parseByte(value, 255)
		if err != nil {
			return fmt.Errorf("IMU_SMPLRT_DIV: %w", err)
		}
		c.IMUSampleRateDiv = v
	case "IMU_WAKE_DELAY_MS":
		ms, err := parseMillis(value)
		if err != nil {
			return fmt.Errorf("IMU_WAKE_DELAY_MS: %w", err)
		}
		c.IMUWakeDelayMS = ms
	case "IMU_SERIAL_PORT":
		c.IMUSerialPort = value
	case "IMU_SERIAL_BAUD":
		baud, err := strconv.ParseUint(value, 10, 32)
		if err != nil || baud == 0 {
			return fmt.Errorf("invalid IMU_SERIAL_BAUD %q", value)
		}
		c.IMUSerialBaud = uint(baud)

	// Detector thresholds
	case "SHAKE_THRESHOLD_G":
		return setFloat(&c.Motion.ShakeThresholdG, value)
	case "SHAKE_COOLDOWN_MS":
		return setDuration(&c.Motion.ShakeCooldown, value)
	case "FREEFALL_THRESHOLD_G":
		return setFloat(&c.Motion.FreefallThresholdG, value)
	case "FREEFALL_DURATION_MS":
		return setDuration(&c.Motion.FreefallDuration, value)
	case "TILT_THRESHOLD_DEG":
		return setFloat(&c.Motion.TiltThresholdDeg, value)
	case "SPIN_THRESHOLD_DPS":
		return setFloat(&c.Motion.SpinThresholdDPS, value)
	case "SPIN_DURATION_MS":
		return setDuration(&c.Motion.SpinDuration, value)
	case "JERK_THRESHOLD_G":
		return setFloat(&c.Motion.JerkThresholdG, value)
	case "JERK_DURATION_MS":
		return setDuration(&c.Motion.JerkDuration, value)
	case "JERK_COOLDOWN_MS":
		return setDuration(&c.Motion.JerkCooldown, value)

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Store
	case "EVENT_DB_PATH":
		c.EventDBPath = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := parsePort(value)
		if err != nil {
			return fmt.Errorf("WEB_SERVER_PORT: %w", err)
		}
		c.WebServerPort = port

	// Register debug
	case "REGISTER_DEBUG_PORT":
		port, err := parsePort(value)
		if err != nil {
			return fmt.Errorf("REGISTER_DEBUG_PORT: %w", err)
		}
		c.RegisterDebugPort = port
	case "REGISTER_DEBUG_WRITABLE":
		if _, err := ParseRegisterRanges(value); err != nil {
			return fmt.Errorf("REGISTER_DEBUG_WRITABLE: %w", err)
		}
		c.RegisterDebugWritable = value

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 7)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseByte(value string, max uint64) (byte, error) {
	v, err := strconv.ParseUint(value, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", value, err)
	}
	if v > max {
		return 0, fmt.Errorf("must be 0-%d, got %d", max, v)
	}
	return byte(v), nil
}

func parseMillis(value string) (int, error) {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds %q: %w", value, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", ms)
	}
	return ms, nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", value, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be 1-65535, got %d", port)
	}
	return port, nil
}

func setFloat(dst *float64, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", value, err)
	}
	*dst = v
	return nil
}

func setDuration(dst *time.Duration, value string) error {
	ms, err := parseMillis(value)
	if err != nil {
		return err
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

// validate checks that required fields are set and consistent.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	switch c.IMUSource {
	case SourceI2C, SourceMock:
	case SourceSerial:
		if c.IMUSerialPort == "" {
			return fmt.Errorf("IMU_SERIAL_PORT is required when IMU_SOURCE=serial")
		}
	default:
		return fmt.Errorf("IMU_SOURCE must be i2c, serial or mock, got %q", c.IMUSource)
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL must be positive")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL must be positive")
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	if err := c.Motion.Validate(); err != nil {
		return err
	}
	return nil
}

// SampleInterval is IMU_SAMPLE_INTERVAL as a duration.
func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.IMUSampleInterval) * time.Millisecond
}

// WakeDelay is IMU_WAKE_DELAY_MS as a duration.
func (c *Config) WakeDelay() time.Duration {
	return time.Duration(c.IMUWakeDelayMS) * time.Millisecond
}

// InitGlobal loads the global configuration once; later calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
