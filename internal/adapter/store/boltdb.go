package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"webrag/internal/domain"
	"webrag/internal/port"
)

var _ port.EvalStore = (*BoltStore)(nil)

var (
	bucketRuns    = []byte("runs")
	bucketResults = []byte("results")
	bucketMeta    = []byte("meta")
)

// BoltStore keeps evaluation runs in a single bbolt file. Each run is one
// key in the runs bucket; its per-example results share the run ID as key
// in the results bucket.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRuns, bucketResults, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) SaveRun(run domain.EvalRun, results []domain.EvalResult) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		runData, err := json.Marshal(run)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRuns).Put([]byte(run.ID), runData); err != nil {
			return err
		}

		if results == nil {
			results = []domain.EvalResult{}
		}
		resultData, err := json.Marshal(results)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Put([]byte(run.ID), resultData)
	})
}

func (s *BoltStore) GetRun(id string) (domain.EvalRun, []domain.EvalResult, error) {
	var run domain.EvalRun
	var results []domain.EvalResult
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
		}
		if err := json.Unmarshal(data, &run); err != nil {
			return err
		}

		if data := tx.Bucket(bucketResults).Get([]byte(id)); data != nil {
			if err := json.Unmarshal(data, &results); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.EvalRun{}, nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Position < results[j].Position })
	return run, results, nil
}

// ListRuns returns every stored run, newest first.
func (s *BoltStore) ListRuns() ([]domain.EvalRun, error) {
	var runs []domain.EvalRun
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var run domain.EvalRun
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

// DeleteRun removes a run and its results. Deleting an unknown run is not
// an error.
func (s *BoltStore) DeleteRun(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRuns).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Delete([]byte(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
