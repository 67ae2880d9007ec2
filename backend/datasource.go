package backend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/fsnotify/fsnotify"
)

// TimestampLayout is the fixed wire format for timestamps in trace
// files.
const TimestampLayout = time.RFC3339

// Session is one attempt to load a trace. The dataset referenced by a
// session only ever grows; a failed load carries Err and may hold a
// partially-empty dataset that the UI must not chart.
type Session struct {
	ID   string
	Data *Dataset
	Mode Mode
	Err  error
}

// Charted reports whether the session holds data fit for visualization.
// A session that errored is never charted, even if some rows parsed
// before the failure.
func (s Session) Charted() bool {
	return s.Err == nil && s.Data != nil && s.Data.Initialized()
}

type InputKind uint8

const (
	KindSample InputKind = iota
	KindHeadings
	KindError
)

// InputData is the ingestion layer's wire type: either a heading
// registration, a single sample, or a terminal read error.
type InputData struct {
	Kind InputKind
	Sample
	Headings      []string
	HeadingSeries []int
	Err           error
}

// Sample is one parsed (timestamp, value) pair destined for a series.
type Sample struct {
	TimestampNS int64
	Series      int
	Value       float64
}

type Mode uint8

const (
	ModeNone Mode = iota
	ModeFile
	ModeStream
)

// Datasource loads sentiment trace files and exposes them as streamed
// session snapshots. The rendering core never touches I/O; it only sees
// the Dataset held by the most recent session.
type Datasource struct {
	pool          *stream.MutationPool[string, Session]
	watcher       *fsnotify.Watcher
	appCtx        context.Context
	seriesCounter atomic.Int32
}

func NewDatasource(appCtx context.Context, mutator *stream.Mutator) (*Datasource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	ds := &Datasource{
		pool:    stream.NewMutationPool[string, Session](mutator),
		watcher: watcher,
		appCtx:  appCtx,
	}
	return ds, nil
}

func (d *Datasource) SessionStream(ctx context.Context) <-chan map[string]*stream.Mutation[Session] {
	return d.pool.Stream(ctx)
}

// LatestSessionStream streams snapshots of whichever session was started
// most recently. Session IDs sort chronologically, so the newest is the
// lexicographic maximum.
func (d *Datasource) LatestSessionStream(ctx context.Context) <-chan Session {
	return stream.Multiplex(d.pool.Stream(ctx), func(ctx context.Context, state string, mutations map[string]*stream.Mutation[Session]) (<-chan Session, string) {
		newest := ""
		var newestMut *stream.Mutation[Session]
		for id, m := range mutations {
			if id > newest {
				newest = id
				newestMut = m
			}
		}
		if newestMut == nil || newest == state {
			return nil, state
		}
		return newestMut.Stream(ctx), newest
	})
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

func (d *Datasource) recordSession(sessionID string, mode Mode, files ...io.ReadCloser) *stream.Mutation[Session] {
	box, _ := stream.Mutate(d.pool, sessionID, func(ctx context.Context) (values <-chan Session) {
		out := make(chan Session, 1)
		go func() {
			defer close(out)
			session := Session{
				ID:   sessionID,
				Data: &Dataset{},
				Mode: mode,
			}
			// Emit the empty dataset immediately so the UI can show a
			// loading state.
			out <- session

			rawSamples := make(chan InputData, 1024)
			for _, file := range files {
				if f, ok := file.(interface{ Name() string }); ok && mode == ModeFile {
					d.watcher.Add(f.Name())
				}
				go d.readSource(file, mode, rawSamples)
			}

			for {
				select {
				case <-ctx.Done():
					return
				case input := <-rawSamples:
					switch input.Kind {
					case KindHeadings:
						session.Data.SetHeadings(input.Headings, input.HeadingSeries)
					case KindSample:
						session.Data.Insert(input.Sample)
					case KindError:
						session.Err = input.Err
					}
					out <- session
				}
			}
		}()
		return out
	})
	return box
}

// LoadFromFile prompts for a trace file and begins loading it as a new
// session, returning the session ID.
func (d *Datasource) LoadFromFile(expl *explorer.Explorer) (string, error) {
	file, err := expl.ChooseFile("csv")
	if err != nil {
		return "", fmt.Errorf("failed choosing trace file: %w", err)
	}
	return d.LoadFromStream(ModeFile, file), nil
}

// LoadFromStream begins loading the given readers as a new session.
func (d *Datasource) LoadFromStream(mode Mode, files ...io.ReadCloser) string {
	id := generateSessionID()
	d.recordSession(id, mode, files...)
	return id
}

// readSource parses one CSV trace. The header's first column is the
// timestamp column and every remaining column names a series. Rows with
// unparsable timestamps are dropped whole; unparsable or empty value
// cells are skipped individually.
func (d *Datasource) readSource(source io.ReadCloser, mode Mode, samplesChan chan InputData) {
	defer source.Close()
	csvReader := csv.NewReader(NewLineReader(source))
	csvReader.TrimLeadingSpace = true
	headings, err := csvReader.Read()
	if err != nil {
		samplesChan <- InputData{Kind: KindError, Err: fmt.Errorf("failed reading trace header: %w", err)}
		return
	}
	if len(headings) < 2 {
		samplesChan <- InputData{Kind: KindError, Err: fmt.Errorf("trace header has no series columns: %v", headings)}
		return
	}
	seriesNames := make([]string, 0, len(headings)-1)
	headingSeries := make([]int, 0, len(headings)-1)
	for _, heading := range headings[1:] {
		seriesNames = append(seriesNames, strings.TrimSpace(heading))
		headingSeries = append(headingSeries, int(d.seriesCounter.Add(1)))
	}
	samplesChan <- InputData{
		Kind:          KindHeadings,
		Headings:      seriesNames,
		HeadingSeries: headingSeries,
	}
	// Continuously parse rows and send them on the channel.
readLoop:
	for {
		rec, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if mode != ModeFile {
					return
				}
				// Wait for the file to grow, then resume parsing.
				for {
					select {
					case <-d.appCtx.Done():
						return
					case ev, open := <-d.watcher.Events:
						if !open {
							return
						}
						if ev.Op == fsnotify.Write {
							continue readLoop
						}
					}
				}
			}
			log.Printf("could not read trace data: %v", err)
			return
		}
		ts, err := time.Parse(TimestampLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			// Drop the row; a bad timestamp invalidates every cell in it.
			continue
		}
		for i := 1; i < len(rec) && i-1 < len(headingSeries); i++ {
			cell := strings.TrimSpace(rec[i])
			if len(cell) < 1 {
				// Skip null cells.
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				log.Printf("failed parsing data[%d]=%q: %v", i, rec[i], err)
				continue
			}
			samplesChan <- InputData{
				Kind: KindSample,
				Sample: Sample{
					TimestampNS: ts.UnixNano(),
					Series:      headingSeries[i-1],
					Value:       value,
				},
			}
		}
	}
}
