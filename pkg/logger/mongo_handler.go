package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
	mongoLogTTL    = 14 * 24 * time.Hour
)

// LogDocument is one stored record. Correlation keys used by the storefront
// are lifted out of Attrs so order and request trails can be indexed.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	OrderID   string    `bson:"order_id,omitempty"`
	UserID    string    `bson:"user_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// batchWriter is the slice of *mongo.Collection the sink needs.
type batchWriter func(ctx context.Context, docs []interface{}) error

// mongoSink owns the queue and the single writer goroutine shared by every
// handler derived through WithAttrs/WithGroup.
type mongoSink struct {
	write      batchWriter
	disconnect func(ctx context.Context) error
	queue      chan LogDocument
	done       chan struct{}
	exited     chan struct{}
	closeOnce  sync.Once
	dropped    atomic.Int64
}

func newMongoSink(write batchWriter, disconnect func(ctx context.Context) error) *mongoSink {
	s := &mongoSink{
		write:      write,
		disconnect: disconnect,
		queue:      make(chan LogDocument, mongoQueueSize),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
	go s.run()
	return s
}

// enqueue never blocks; a full queue drops the record.
func (s *mongoSink) enqueue(doc LogDocument) {
	select {
	case s.queue <- doc:
	default:
		s.dropped.Add(1)
	}
}

func (s *mongoSink) run() {
	defer close(s.exited)
	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.write(ctx, batch)
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			if batch = append(batch, doc); len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case doc := <-s.queue:
					if batch = append(batch, doc); len(batch) >= mongoBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *mongoSink) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.exited
		if s.disconnect != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.disconnect(ctx)
		}
	})
}

// MongoHandler is an slog.Handler that batches records into a MongoDB
// collection off the request path.
type MongoHandler struct {
	sink   *mongoSink
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewMongoHandler connects to uri and writes Info and above to db.collection.
// Documents expire after two weeks through a TTL index on time.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("mongo log sink: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo log sink: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "time", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(mongoLogTTL.Seconds())),
		},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})

	write := func(ctx context.Context, docs []interface{}) error {
		_, err := col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		return err
	}
	return &MongoHandler{sink: newMongoSink(write, client.Disconnect), level: slog.LevelInfo}, nil
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{
		Time:  r.Time,
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}
	for _, a := range h.attrs {
		lift(&doc, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		lift(&doc, h.prefix, a)
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	h.sink.enqueue(doc)
	return nil
}

// lift stores a under its dotted group path, promoting correlation keys.
func lift(doc *LogDocument, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			lift(doc, p, ga)
		}
		return
	}
	if prefix == "" {
		switch a.Key {
		case "request_id":
			doc.RequestID = v.String()
			return
		case "order_id":
			doc.OrderID = v.String()
			return
		case "user_id":
			doc.UserID = v.String()
			return
		}
	}
	doc.Attrs[prefix+a.Key] = v.Any()
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// Dropped counts records lost to a full queue.
func (h *MongoHandler) Dropped() int64 { return h.sink.dropped.Load() }

// Close flushes what is queued and disconnects. Safe to call twice.
func (h *MongoHandler) Close() { h.sink.close() }
