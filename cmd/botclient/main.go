// Command botclient is a headless client that joins a server and wanders
// randomly. It exercises the full synchronization path (prediction,
// reconciliation, interpolation) without a rendering layer, which makes it
// useful for soak-testing servers and profiling the netcode.
package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitvolt/gridrunner-mp/config"
	"github.com/bitvolt/gridrunner-mp/network"
	"github.com/bitvolt/gridrunner-mp/shared/protocol"
	"github.com/pkg/profile"
	"github.com/yohamta/donburi"
)

const (
	frameRate = 60
	moveSpeed = 3.0
)

func main() {
	addr := flag.String("addr", "", "Server address (host:port); empty = saved settings")
	name := flag.String("name", "", "Player name; empty = saved settings")
	duration := flag.Duration("duration", 0, "Exit after this long (0 = run until interrupted)")
	prof := flag.Bool("profile", false, "Write a CPU profile to the working directory")
	flag.Parse()

	if *prof {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	_ = config.InitPersistence() // logs its own warning on failure
	settings := config.Load()
	if *addr != "" {
		settings.ServerAddress = *addr
	}
	if *name != "" {
		settings.Username = *name
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	sess := network.NewSession(settings.ServerAddress, settings.Username)
	opts := network.DefaultOptions()
	opts.PredictionEnabled = settings.PredictionEnabled
	mgr := network.NewSyncManager(donburi.NewWorld(), sess, opts)
	mgr.Connect()
	defer mgr.Destroy()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	log.Printf("[botclient] wandering on %s as %q", settings.ServerAddress, settings.Username)

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()
	statusEvery := time.NewTicker(5 * time.Second)
	defer statusEvery.Stop()

	var x, y, heading float64
	last := time.Now()

	for {
		select {
		case <-sigCh:
			log.Println("[botclient] interrupted, shutting down")
			_ = config.Save(settings)
			return
		case <-deadline:
			log.Println("[botclient] duration elapsed, shutting down")
			_ = config.Save(settings)
			return
		case <-statusEvery.C:
			log.Printf("[botclient] state=%s latency=%s players=%d pending=%d",
				sess.State(), mgr.Latency(), len(mgr.AllPlayers()), mgr.PendingCommands())
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if mgr.IsConnected() {
				if local := localView(mgr); local != nil {
					x, y = local.X, local.Y
				}
				heading += (rand.Float64() - 0.5) * 20
				velX := math.Cos(heading*math.Pi/180) * moveSpeed
				velY := math.Sin(heading*math.Pi/180) * moveSpeed
				mgr.SendMovement(x+velX, y+velY, velX, velY, heading)
			}
			mgr.Update(dt)
		}
	}
}

func localView(mgr *network.SyncManager) *network.PlayerView {
	for _, p := range mgr.AllPlayers() {
		if p.IsLocal {
			return &p
		}
	}
	return nil
}
