package sources

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/dgraph-io/badger/v4"

	"github.com/hekman/twin-cities-map/pkg/mapengine"
)

// PairCache persists the validated record set so repeat launches skip the
// CSV parse and validation pass entirely.
type PairCache struct {
	db *badger.DB
}

type cachedDataset struct {
	Records []mapengine.PairRecord `json:"records"`
	Dropped int                    `json:"dropped"`
}

func OpenPairCache(dir string) (*PairCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &PairCache{db: db}, nil
}

func (c *PairCache) Close() error { return c.db.Close() }

// Get returns the cached dataset for the given source name, if present.
func (c *PairCache) Get(source string) ([]mapengine.PairRecord, int, bool) {
	var ds cachedDataset
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(source))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &ds)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("[pairs] cache read failed: %v", err)
		}
		return nil, 0, false
	}
	return ds.Records, ds.Dropped, true
}

func (c *PairCache) Put(source string, records []mapengine.PairRecord, dropped int) error {
	data, err := json.Marshal(cachedDataset{Records: records, Dropped: dropped})
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(source), data)
	})
}

// LoadPairsCached loads via the cache when one is supplied, falling back to
// a full parse on a miss and storing the result. A nil cache degrades to a
// plain LoadPairs.
func LoadPairsCached(source string, cache *PairCache) ([]mapengine.PairRecord, int, error) {
	if cache != nil {
		if recs, dropped, ok := cache.Get(source); ok {
			log.Printf("[pairs] using cached dataset for %s (%d records)", source, len(recs))
			return recs, dropped, nil
		}
	}
	recs, dropped, err := LoadPairs(source)
	if err != nil {
		return nil, 0, err
	}
	if cache != nil {
		if err := cache.Put(source, recs, dropped); err != nil {
			log.Printf("[pairs] cache write failed: %v", err)
		}
	}
	return recs, dropped, nil
}
