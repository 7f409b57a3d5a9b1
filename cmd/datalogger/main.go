// Command datalogger runs the 32-channel event logger: it polls two input
// banks, debounces transitions into the persistent log and serves the
// textual request surface. A missing network never stops logging; the
// process degrades to local-only operation instead.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datalogger-go/bus"
	"datalogger-go/channels"
	"datalogger-go/clock"
	cfgfile "datalogger-go/config"
	"datalogger-go/eventlog"
	"datalogger-go/inputs"
	"datalogger-go/led"
	"datalogger-go/services/config"
	"datalogger-go/services/heartbeat"
	"datalogger-go/services/httpd"
	"datalogger-go/services/indicator"
	"datalogger-go/services/mirror"
	"datalogger-go/services/recorder"
	"datalogger-go/storage"
)

func main() {
	cfg := &cfgfile.Config{}
	if len(os.Args) > 1 {
		loaded, err := cfgfile.Load(os.Args[1])
		if err != nil {
			println("Error: main:", err.Error())
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfgfile.Validate(cfg); err != nil {
		println("Error: main: config:", err.Error())
		os.Exit(1)
	}
	cfgfile.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	println("Info: main: bootstrapping bus")
	b := bus.New(8)

	data, meta, err := openDevices(cfg.Storage)
	if err != nil {
		println("Error: main: storage:", err.Error())
		os.Exit(1)
	}

	store, err := eventlog.Open(data, eventlog.NewHeaderStore(meta))
	if err != nil {
		println("Error: main: log recovery:", err.Error())
		os.Exit(1)
	}

	names := channels.NewTable(meta)
	if ok, err := names.Initialized(); err != nil {
		println("Error: main: name table probe:", err.Error())
		os.Exit(1)
	} else if !ok {
		println("Info: main: fresh name table, writing defaults")
		if err := names.Reset(); err != nil {
			println("Error: main: name table init:", err.Error())
			os.Exit(1)
		}
	}

	clk := clock.NewSystem()
	checkClock(b, clk, store)

	banks, err := buildBanks(cfg.Banks)
	if err != nil {
		println("Error: main: inputs:", err.Error())
		os.Exit(1)
	}

	rec := recorder.New(recorder.Config{PollPeriod: cfg.PollPeriod()},
		store, names, clk, banks, b.Connect("recorder"))
	if err := rec.Start(ctx); err != nil {
		println("Error: main: recorder:", err.Error())
		os.Exit(1)
	}

	config.New(cfg).Start(ctx, b.Connect("config"))
	heartbeat.New(&led.Log{Name: "heartbeat"}).Start(ctx, b.Connect("heartbeat"))
	indicator.New(&led.Log{Name: "net"}, &led.Log{Name: "eeprom"}).
		Start(ctx, b.Connect("indicator"))

	if cfg.Mirror.Enabled {
		startMirror(ctx, b, cfg.Mirror)
	}

	srv := httpd.New(rec, b.Connect("httpd"))
	println("Info: main: listening on", cfg.Listen)
	if err := srv.Serve(ctx, cfg.Listen); err != nil {
		// Logging continues without the network surface.
		println("Error: main: httpd:", err.Error(), "- running local-only")
		<-ctx.Done()
	}
	println("Info: main: shutting down")
	// Give service loops a moment to observe cancellation.
	time.Sleep(100 * time.Millisecond)
}

// openDevices builds the record device and the header/name device.
func openDevices(sc cfgfile.StorageConfig) (data, meta storage.BlockDevice, err error) {
	switch sc.Backend {
	case "file":
		d, err := storage.OpenFileDevice(sc.DataPath)
		if err != nil {
			return nil, nil, err
		}
		m, err := storage.OpenFileDevice(sc.MetaPath)
		if err != nil {
			return nil, nil, err
		}
		return d, m, nil
	default: // "mem", useful for bring-up and demos
		return storage.NewMemDevice(), storage.NewMemDevice(), nil
	}
}

func buildBanks(bcs []cfgfile.BankConfig) ([inputs.BankCount]inputs.Source, error) {
	var banks [inputs.BankCount]inputs.Source
	for i, bc := range bcs {
		switch bc.Source {
		case "gpiocdev":
			src, err := inputs.NewGPIOCdev(bc.Chip, bc.Offsets)
			if err != nil {
				return banks, err
			}
			banks[i] = src
		case "modbus":
			src, err := inputs.NewModbusBank(inputs.ModbusConfig{
				Endpoint: bc.Endpoint,
				UnitID:   bc.UnitID,
				Start:    bc.Start,
				Timeout:  time.Duration(bc.TimeoutMs) * time.Millisecond,
			})
			if err != nil {
				return banks, err
			}
			banks[i] = src
		default: // "script": all lines idle
			banks[i] = inputs.NewScript(0xFFFF)
		}
	}
	return banks, nil
}

// checkClock flags an implausible clock: if the log was last written at a
// time the clock has not reached yet, either the battery backup failed or
// the clock was set back. The heartbeat blinks fast until the time is
// corrected over /time.
func checkClock(b *bus.Bus, clk clock.Clock, store *eventlog.Store) {
	conn := b.Connect("boot")
	now, err := clk.Now()
	if err != nil {
		println("Error: main: clock:", err.Error())
		conn.PublishRetained(bus.TopicClockHealth, true)
		return
	}
	if last, ok := store.LastAt(); ok && now.Before(last) {
		println("Error: main: clock behind last log write, check battery")
		conn.PublishRetained(bus.TopicClockHealth, true)
		return
	}
	conn.PublishRetained(bus.TopicClockHealth, false)
}

func startMirror(ctx context.Context, b *bus.Bus, mc cfgfile.MirrorConfig) {
	pub, err := mirror.NewPahoPublisher(mc.Broker, mc.ClientID)
	if err != nil {
		// Best effort only; the persistent log is the source of truth.
		println("Error: main: mirror:", err.Error(), "- mirroring disabled")
		return
	}
	mirror.New(pub, mc.Topic).Start(ctx, b.Connect("mirror"))
}
