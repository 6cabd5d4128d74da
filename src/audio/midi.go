package audio

import (
	"context"
	"log"

	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn opens MIDI input port and streams raw messages until ctx is
// done. The channel is closed when listening stops or the port cannot be
// opened.
func ListenToMidiIn(ctx context.Context, port int) <-chan []byte {
	ch := make(chan []byte, 1024)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			if err := drv.Close(); err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)
		if port < 0 || port >= len(ins) {
			log.Printf("WARN: MIDI IN port %d not found\n", port)
			return
		}
		in := ins[port]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			if err := in.Close(); err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
				log.Println("WARN: MIDI message dropped")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			if err := in.StopListening(); err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		<-ctx.Done()
	}()
	return ch
}

// ReceiveMidi feeds note-on messages from ch to the device.
func (a *Audio) ReceiveMidi(ctx context.Context, ch <-chan []byte) error {
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("ReceiveMidi() interrupted")
			break loop
		case data, ok := <-ch:
			if !ok {
				break loop
			}
			a.AddMidiEvent(data)
		}
	}
	log.Println("ReceiveMidi() ended.")
	return nil
}
