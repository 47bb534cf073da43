package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Commands          map[string]*CommandStats
	Connections       map[string]*ConnectionStats
	Errors            int
	ErrorsByKind      map[string]int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// CommandStats aggregates the responses to one command.
type CommandStats struct {
	Responses int
	Failed    int
	AckOnly   int
	total     time.Duration
	timed     int
	Max       time.Duration
}

// Mean returns the average round trip of the timed responses.
func (c *CommandStats) Mean() time.Duration {
	if c.timed == 0 {
		return 0
	}
	return c.total / time.Duration(c.timed)
}

// ConnectionStats holds statistics for a single transport connection.
type ConnectionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	DeviceType string
	Port       string
	SessionID  string
}

// CollectStats reads path and aggregates every event.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Commands:          make(map[string]*CommandStats),
		Connections:       make(map[string]*ConnectionStats),
		ErrorsByKind:      make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.ConnectionID != "" {
		conn, ok := s.Connections[event.ConnectionID]
		if !ok {
			conn = &ConnectionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			s.Connections[event.ConnectionID] = conn
		}
		conn.Events++
		if event.Timestamp.After(conn.LastSeen) {
			conn.LastSeen = event.Timestamp
		}
		if conn.DeviceType == "" {
			conn.DeviceType = event.DeviceType
		}
		if conn.Port == "" {
			conn.Port = event.Port
		}
		if conn.SessionID == "" {
			conn.SessionID = event.SessionID
		}
	}

	if msg := event.Message; msg != nil && msg.Type == log.MessageTypeResponse {
		cs, ok := s.Commands[msg.Command]
		if !ok {
			cs = &CommandStats{}
			s.Commands[msg.Command] = cs
		}
		cs.Responses++
		if msg.Ack == nil || !msg.Ack.IsSuccess() {
			cs.Failed++
		}
		if msg.AckOnly {
			cs.AckOnly++
		}
		if msg.RoundTrip != nil {
			cs.total += *msg.RoundTrip
			cs.timed++
			if *msg.RoundTrip > cs.Max {
				cs.Max = *msg.RoundTrip
			}
		}
	}

	if event.Error != nil {
		s.Errors++
		kind := event.Error.Kind
		if kind == "" {
			kind = "unknown"
		}
		s.ErrorsByKind[kind]++
	}
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== tsmeter Protocol Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Commands) > 0 {
		names := make([]string, 0, len(stats.Commands))
		for name := range stats.Commands {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w, "Commands:")
		for _, name := range names {
			cs := stats.Commands[name]
			fmt.Fprintf(w, "  %-8s %d responses, %d failed, %d ack-only", name, cs.Responses, cs.Failed, cs.AckOnly)
			if cs.timed > 0 {
				fmt.Fprintf(w, ", mean %s, max %s", formatDuration(cs.Mean()), formatDuration(cs.Max))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range conns {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenConnID(c.id), c.stats.Events, duration)
			if c.stats.DeviceType != "" {
				fmt.Fprintf(w, "           Device: %s", c.stats.DeviceType)
				if c.stats.Port != "" {
					fmt.Fprintf(w, " on %s", c.stats.Port)
				}
				fmt.Fprintln(w)
			}
			if c.stats.SessionID != "" {
				fmt.Fprintf(w, "           Session: %s\n", c.stats.SessionID)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
		kinds := make([]string, 0, len(stats.ErrorsByKind))
		for k := range stats.ErrorsByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-16s %d\n", k+":", stats.ErrorsByKind[k])
		}
	}
}
