package live

import (
	"bufio"
	"fmt"
	"time"
)

// KeepAlive is how often an idle stream sends a comment line so proxies don't
// close the connection.
var KeepAlive = 25 * time.Second

// Stream subscribes to a league and writes its messages to w as server-sent events
// until the client disconnects (a write fails) or the Hub stops.
func (h *Hub) Stream(leagueID string, w *bufio.Writer) {
	client := NewClient(leagueID)
	if !h.Register(client) {
		return
	}
	defer h.Unregister(client)

	// Tell the client it is connected before the first real event.
	fmt.Fprint(w, ": connected\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-client.Send:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: standings_updated\ndata: %s\n\n", data)
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}
