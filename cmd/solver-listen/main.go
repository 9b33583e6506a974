// Receives solver notifications and prints the decoded messages.  Listens on a
// zmq PULL socket or a gorpc receiver, or dumps a recorder file.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/mask"
	"github.com/janelia-flyem/labelpaint/solver"
	"github.com/janelia-flyem/labelpaint/transport/recorder"
	"github.com/janelia-flyem/labelpaint/transport/rpc"
	"github.com/janelia-flyem/labelpaint/transport/zmq"
)

var (
	zmqEndpoint = flag.String("zmq", "", "zmq endpoint to bind a PULL socket, e.g. tcp://*:5555")
	rpcAddress  = flag.String("rpc", "", "address for a gorpc solver receiver")
	recordFile  = flag.String("record", "", "recorder file to dump instead of listening")
	showMasks   = flag.Bool("masks", false, "print the voxel count of each annotation mask")
)

func printMessages(msgs []solver.Message) {
	for _, msg := range msgs {
		switch m := msg.(type) {
		case *solver.Start:
			fmt.Printf("START %s label %d box %v-%v\n  contained %v\n  neighboring %v\n  overpainted %v\n",
				m.CorrelationID, m.Label, m.Min, m.Max, m.Contained, m.Neighboring, m.Overpainted)
		case *solver.Annotation:
			fmt.Printf("ANNOTATION %s label %d chunk %v-%v, %d bytes", m.CorrelationID, m.Label, m.Min, m.Max, len(m.Data))
			if *showMasks {
				var size labelpaint.Point3d
				for dim := 0; dim < 3; dim++ {
					size[dim] = int32(m.Max[dim] - m.Min[dim] + 1)
				}
				bits, err := mask.DecodeBytes(size, m.Data)
				if err != nil {
					fmt.Printf(", bad mask: %v", err)
				} else {
					var n int
					for _, set := range bits {
						if set {
							n++
						}
					}
					fmt.Printf(", %d voxels", n)
				}
			}
			fmt.Println()
		case *solver.Stop:
			fmt.Printf("STOP %s\n", m.CorrelationID)
		}
	}
}

func main() {
	flag.Parse()
	switch {
	case *recordFile != "":
		frames, err := recorder.ReadFrames(*recordFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		for _, f := range frames {
			msg, err := solver.Decode(f.Data)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			printMessages([]solver.Message{msg})
		}
	case *zmqEndpoint != "":
		l, err := zmq.Listen(*zmqEndpoint)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer l.Close()
		for {
			msgs, err := l.Receive()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			printMessages(msgs)
		}
	case *rpcAddress != "":
		r, err := rpc.NewReceiver(*rpcAddress, func(b *rpc.Batch) error {
			msgs, err := b.Messages()
			if err != nil {
				return err
			}
			printMessages(msgs)
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer r.Close()
		stopSig := make(chan os.Signal, 1)
		signal.Notify(stopSig, os.Interrupt, syscall.SIGTERM)
		<-stopSig
	default:
		flag.Usage()
		os.Exit(2)
	}
}
