package walletdata

import (
	"fmt"
	"os"

	"github.com/asdine/storm"
	bolt "go.etcd.io/bbolt"
)

const (
	DbName = "walletdata.db"

	metadataBucketName = "WalletDataInfo"
	KeyDbVersion       = "DbVersion"

	// DbVersion forces a re-sync of persisted network data if changes are
	// made to the structure of the stored records.
	DbVersion uint32 = 1
)

// DB persists the network data a sync backend asks the host to save between
// sessions: merkle block records and known good peers.
type DB struct {
	db *storm.DB
}

// Initialize opens the wallet data database at dbPath, discarding and
// recreating it if its version is out of date.
func Initialize(dbPath string) (*DB, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	// check if database is out of date and delete it
	var currentDbVersion uint32
	err = db.Get(metadataBucketName, KeyDbVersion, &currentDbVersion)
	if err != nil && err != storm.ErrNotFound {
		return nil, fmt.Errorf("error checking wallet data database version: %s", err.Error())
	}

	if currentDbVersion != DbVersion {
		if currentDbVersion != 0 {
			log.Infof("Wallet data database version changed from %d to %d, recreating",
				currentDbVersion, DbVersion)
		}
		if err = db.Close(); err == nil {
			err = os.RemoveAll(dbPath)
		}
		if err != nil {
			return nil, fmt.Errorf("error deleting outdated wallet data database: %s", err.Error())
		}

		db, err = openDB(dbPath)
		if err != nil {
			return nil, err
		}
		err = db.Set(metadataBucketName, KeyDbVersion, DbVersion)
		if err != nil {
			return nil, fmt.Errorf("error initializing wallet data database: %s", err.Error())
		}
	}

	err = db.Init(&BlockRecord{})
	if err != nil {
		return nil, err
	}
	err = db.Init(&PeerRecord{})
	if err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

func openDB(dbPath string) (*storm.DB, error) {
	db, err := storm.Open(dbPath)
	if err != nil {
		if err == bolt.ErrTimeout {
			// timeout error occurs if storm fails to acquire a lock
			// on the database file
			return nil, fmt.Errorf("wallet data database is in use by another process")
		}
		return nil, fmt.Errorf("error opening wallet data database: %s", err.Error())
	}
	return db, nil
}

// Close releases the underlying database.
func (db *DB) Close() error {
	return db.db.Close()
}
