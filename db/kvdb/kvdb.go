package kvdb

const (
	HistoryBucket = "search_history"
)

var buckets = []string{HistoryBucket}

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	ClearBucket(bucket string) error
	Close() error
}
