// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/sensors"
)

// RegisterCmd is a request from the register debug page.
type RegisterCmd struct {
	Action string `json:"action"` // get_map, read, read_all, write, init, export_config
	Addr   string `json:"addr,omitempty"`
	Value  string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string            `json:"type"` // register_map, register_data, status, export_config, error
	Device      string            `json:"device,omitempty"`
	IMU         string            `json:"imu,omitempty"`
	Address     string            `json:"addr,omitempty"`
	Value       string            `json:"value,omitempty"`
	Registers   map[string]string `json:"registers,omitempty"` // for bulk read
	Timestamp   string            `json:"timestamp,omitempty"`
	Message     string            `json:"message,omitempty"`
	Status      string            `json:"status,omitempty"`
	RegisterMap []RegisterEntry   `json:"register_map,omitempty"`
	Config      string            `json:"config,omitempty"`
	Filename    string            `json:"filename,omitempty"`
}

// RegisterEntry is sensors.RegisterInfo with hex formatted numbers.
type RegisterEntry struct {
	Address  string `json:"address"`
	Reset    string `json:"default,omitempty"`
	CanWrite bool   `json:"writable"`
	sensors.RegisterInfo
}

// RegisterConfigFile is the JSON snapshot produced by export_config.
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	IMU       string            `json:"imu"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// RegisterDebugger exposes the IMU's registers over a websocket. Writes are
// limited to the configured ranges.
type RegisterDebugger struct {
	mu       sync.Mutex // one bus transaction at a time across sessions
	driver   *sensors.MPU6050
	table    []sensors.RegisterInfo
	writable config.RegisterRanges
	now      func() time.Time
}

func NewRegisterDebugger(driver *sensors.MPU6050, writable config.RegisterRanges) *RegisterDebugger {
	return &RegisterDebugger{
		driver:   driver,
		table:    sensors.RegisterInfoFor(driver.Registers()),
		writable: writable,
		now:      time.Now,
	}
}

// ServeHTTP handles one websocket session.
func (d *RegisterDebugger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(d.Handle(RegisterCmd{Action: "get_map"})); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(d.Handle(cmd)); err != nil {
			log.Printf("register_debug: write error: %v", err)
			return
		}
	}
}

// Handle executes one command.
func (d *RegisterDebugger) Handle(cmd RegisterCmd) RegisterResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd.Action {
	case "get_map":
		return d.registerMap()
	case "read":
		return d.read(cmd)
	case "read_all":
		return d.readAll()
	case "write":
		return d.write(cmd)
	case "init":
		return d.reinit()
	case "export_config":
		return d.export()
	case "":
		return errorResponse("missing or invalid action field")
	default:
		return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

func hex8(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}

func parseHex8(s string) (uint8, error) {
	var v uint8
	if _, err := fmt.Sscanf(s, "0x%X", &v); err != nil {
		return 0, err
	}
	return v, nil
}

func (d *RegisterDebugger) registerMap() RegisterResponse {
	entries := make([]RegisterEntry, len(d.table))
	for i, info := range d.table {
		entries[i] = RegisterEntry{
			Address:      hex8(info.Addr),
			CanWrite:     info.Writable() && d.writable.Contains(info.Addr),
			RegisterInfo: info,
		}
		if info.Reset != 0 {
			entries[i].Reset = hex8(info.Reset)
		}
	}
	return RegisterResponse{
		Type:        "register_map",
		Device:      d.driver.Registers().Device,
		IMU:         d.driver.Name(),
		RegisterMap: entries,
	}
}

func (d *RegisterDebugger) read(cmd RegisterCmd) RegisterResponse {
	if cmd.Addr == "" {
		return errorResponse("missing addr field")
	}
	addr, err := parseHex8(cmd.Addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Addr))
	}

	value, err := d.driver.Bus().ReadRegister(addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    d.driver.Registers().Device,
		Address:   hex8(addr),
		Value:     hex8(value),
		Timestamp: d.now().Format(time.RFC3339),
	}
}

func (d *RegisterDebugger) snapshot() (map[string]string, error) {
	regs := make(map[string]string, len(d.table))
	for _, info := range d.table {
		value, err := d.driver.Bus().ReadRegister(info.Addr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Name, err)
		}
		regs[hex8(info.Addr)] = hex8(value)
	}
	return regs, nil
}

func (d *RegisterDebugger) readAll() RegisterResponse {
	regs, err := d.snapshot()
	if err != nil {
		return errorResponse(fmt.Sprintf("read all error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    d.driver.Registers().Device,
		Registers: regs,
		Timestamp: d.now().Format(time.RFC3339),
	}
}

func (d *RegisterDebugger) write(cmd RegisterCmd) RegisterResponse {
	if cmd.Addr == "" || cmd.Value == "" {
		return errorResponse("missing addr or value field")
	}
	addr, err := parseHex8(cmd.Addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Addr))
	}
	value, err := parseHex8(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}

	info, known := sensors.LookupRegister(d.table, addr)
	if !known || !info.Writable() || !d.writable.Contains(addr) {
		return errorResponse(fmt.Sprintf("register %s not in allowed write ranges", hex8(addr)))
	}

	if err := d.driver.Bus().WriteRegister(addr, value); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}
	log.Printf("register_debug: wrote %s = %s (%s)", hex8(addr), hex8(value), info.Name)
	return RegisterResponse{
		Type:      "register_data",
		Device:    d.driver.Registers().Device,
		Address:   hex8(addr),
		Value:     hex8(value),
		Timestamp: d.now().Format(time.RFC3339),
		Message:   "write successful",
	}
}

func (d *RegisterDebugger) reinit() RegisterResponse {
	if err := d.driver.Init(); err != nil {
		return errorResponse(fmt.Sprintf("reinit error: %v", err))
	}
	return RegisterResponse{
		Type:    "status",
		Device:  d.driver.Registers().Device,
		Status:  "initialized",
		Message: fmt.Sprintf("IMU reinitialized, output rate %d Hz", d.driver.OutputRateHz()),
	}
}

func (d *RegisterDebugger) export() RegisterResponse {
	regs, err := d.snapshot()
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	now := d.now()
	device := d.driver.Registers().Device
	file := RegisterConfigFile{
		Version:   1,
		IMU:       d.driver.Name(),
		Device:    device,
		Timestamp: now.Format(time.RFC3339),
		Registers: regs,
	}
	data, err := json.Marshal(file)
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}
	return RegisterResponse{
		Type:     "export_config",
		Device:   device,
		Message:  "config exported",
		Config:   string(data),
		Filename: fmt.Sprintf("%s_%s_%s_registers.json", d.driver.Name(), device, now.Format("20060102_150405")),
	}
}

// RunRegisterDebug serves the register debug tool for the configured IMU
// until ctx is cancelled.
func RunRegisterDebug(ctx context.Context) error {
	cfg := config.Get()

	dev, err := sensors.OpenDevice(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()
	if dev.Driver == nil {
		return fmt.Errorf("register_debug: IMU_SOURCE=%s has no registers", cfg.IMUSource)
	}

	dbg := NewRegisterDebugger(dev.Driver, cfg.WritableRegisters())

	mux := http.NewServeMux()
	mux.Handle("/ws", dbg)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	log.Printf("register_debug: open http://localhost:%d in your browser", cfg.RegisterDebugPort)
	return serveHTTP(ctx, "register_debug", fmt.Sprintf(":%d", cfg.RegisterDebugPort), mux)
}
