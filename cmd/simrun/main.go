// Command simrun runs a minimal single-switch tsnsim topology and prints
// the egress port's statistics at the end of the run.
package main

import (
	"flag"
	"fmt"

	"github.com/apex/log"

	"github.com/tsnsim/tsnsim"
)

func main() {
	until := flag.Float64("until", 10000, "virtual run length, in microseconds")
	seed := flag.Int64("seed", 1, "pseudo-random source seed")
	bandwidth := flag.Float64("bandwidth", 1000, "link bandwidth, in bits per microsecond (Mb/s)")
	interval := flag.Float64("interval", 100, "mean interarrival time, in microseconds")
	size := flag.Int("size", 512, "frame payload size, in bytes")
	priority := flag.Int("priority", 3, "frame priority (0..7)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	engine := tsnsim.NewEngine(&tsnsim.EngineConfig{Logger: log.Log, Seed: *seed})
	monitor := tsnsim.NewMonitor()
	topology := tsnsim.NewTopology(engine, monitor)

	const switchAddr tsnsim.Address = "sw0"
	const sinkAddr tsnsim.Address = "host1"
	const sourceAddr tsnsim.Address = "host0"

	if _, err := topology.AddSwitch(switchAddr, 10000); err != nil {
		log.WithError(err).Fatal("topology.AddSwitch")
	}
	if _, err := topology.AddSink(sinkAddr); err != nil {
		log.WithError(err).Fatal("topology.AddSink")
	}

	link := tsnsim.LinkConfig{
		BandwidthBitsPerUs:     *bandwidth,
		PropagationDelay:       1,
		MinPreemptionBytes:     64,
		PreemptionPenaltyBytes: 24,
	}
	param := &tsnsim.SwitchParam{}
	if err := topology.ConnectSink(switchAddr, sinkAddr, param, link, *bandwidth); err != nil {
		log.WithError(err).Fatal("topology.ConnectSink")
	}

	if _, err := topology.AddInjector(switchAddr, tsnsim.InjectorConfig{
		SourceAddress:     sourceAddr,
		Destination:       sinkAddr,
		Priority:          *priority,
		IntervalGenerator: &tsnsim.ConstantGenerator[float64]{Value: *interval},
		SizeGenerator:     &tsnsim.ConstantGenerator[int]{Value: *size},
	}); err != nil {
		log.WithError(err).Fatal("topology.AddInjector")
	}

	if err := topology.Run(*until); err != nil {
		log.WithError(err).Fatal("topology.Run")
	}

	sink, _ := topology.Sink(sinkAddr)
	fmt.Printf("frames received at %s: %d\n", sinkAddr, len(sink.Received()))

	stats, err := monitor.PortStatsFor(switchAddr, 0, monitor.WaitingTimeByFrame())
	if err != nil {
		log.WithError(err).Fatal("monitor.PortStatsFor")
	}
	fmt.Printf("port 0 on %s: received=%d sent=%d dropped=%d avg_queue=%.2f avg_size=%.2f\n",
		switchAddr, stats.FramesReceived, stats.FramesSent, stats.FramesDropped,
		stats.AverageQueueLength, stats.AveragePacketSize)
}
