package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
)

const DefaultTTL = 10 * time.Minute

// IndexCache keeps decoded conversation indexes in Redis. Every participant has
// a generation counter next to the cached index; Invalidate bumps it and an
// entry only counts as a hit while its generation is current, so a read that
// raced a write cannot pin an old index until the TTL runs out.
type IndexCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(addr string, ttl time.Duration) *IndexCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IndexCache{
		Client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		TTL: ttl,
	}
}

func key(participantID string) string { return "convindex:" + participantID }
func genKey(participantID string) string { return "convindex:gen:" + participantID }

type cachedLatest struct {
	Timestamp   time.Time `json:"timestamp"`
	PreviewText string    `json:"preview_text"`
	IsRead      bool      `json:"is_read"`
}

type cachedSummary struct {
	ConversationID  string       `json:"conversation_id"`
	PeerID          string       `json:"peer_id"`
	PeerDisplayName string       `json:"peer_display_name"`
	LatestMessage   cachedLatest `json:"latest_message"`
}

type cachedIndex struct {
	Generation int64           `json:"generation"`
	Summaries  []cachedSummary `json:"summaries"`
}

// Get returns the cached index and the participant's current generation. The
// generation is returned on a miss too; pass it to Set with the index read
// afterwards.
func (c *IndexCache) Get(ctx context.Context, participantID string) ([]domain.ConversationSummary, int64, bool, error) {
	vals, err := c.Client.MGet(ctx, genKey(participantID), key(participantID)).Result()
	if err != nil {
		return nil, 0, false, err
	}
	gen, err := parseGeneration(vals[0])
	if err != nil {
		return nil, 0, false, err
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, false, nil // Miss
	}

	var cached cachedIndex
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, 0, false, err
	}
	if cached.Generation != gen {
		return nil, gen, false, nil // Written before the last invalidation
	}
	out := make([]domain.ConversationSummary, 0, len(cached.Summaries))
	for _, s := range cached.Summaries {
		out = append(out, domain.ConversationSummary{
			ConversationID:  s.ConversationID,
			PeerID:          s.PeerID,
			PeerDisplayName: s.PeerDisplayName,
			LatestMessage: domain.LatestMessage{
				Timestamp:   s.LatestMessage.Timestamp,
				PreviewText: s.LatestMessage.PreviewText,
				IsRead:      s.LatestMessage.IsRead,
			},
		})
	}
	return out, gen, true, nil
}

// Set stores summaries under generation gen, the value Get returned before the
// summaries were read from the store.
func (c *IndexCache) Set(ctx context.Context, participantID string, gen int64, summaries []domain.ConversationSummary) error {
	cached := cachedIndex{Generation: gen, Summaries: make([]cachedSummary, 0, len(summaries))}
	for _, s := range summaries {
		cached.Summaries = append(cached.Summaries, cachedSummary{
			ConversationID:  s.ConversationID,
			PeerID:          s.PeerID,
			PeerDisplayName: s.PeerDisplayName,
			LatestMessage: cachedLatest{
				Timestamp:   s.LatestMessage.Timestamp,
				PreviewText: s.LatestMessage.PreviewText,
				IsRead:      s.LatestMessage.IsRead,
			},
		})
	}
	val, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key(participantID), val, c.TTL).Err()
}

// Invalidate bumps the generation; the counter itself never expires.
func (c *IndexCache) Invalidate(ctx context.Context, participantID string) error {
	return c.Client.Incr(ctx, genKey(participantID)).Err()
}

func parseGeneration(v interface{}) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cache generation %q: %w", g, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cache generation has type %T", v)
	}
}

func (c *IndexCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *IndexCache) Close() error {
	return c.Client.Close()
}
