package btclibwallet

import (
	"fmt"
	"path/filepath"

	"github.com/asdine/storm"
	bolt "go.etcd.io/bbolt"
)

const (
	settingsDbFilename   = "settings.db"
	settingsDbBucketName = "user_config"

	LogLevelConfigKey = "log_level"

	InitialSyncCompletedConfigKey    = "initial_sync_complete"
	SyncModeConfigKey                = "sync_mode"
	LastSyncDepthConfigKey           = "last_sync_depth"
	PersistentPeerAddressesConfigKey = "persistent_peer_addresses"
	UserAgentConfigKey               = "user_agent"
	IndexerURLConfigKey              = "indexer_url"
)

// SettingsDB is the key/value store for user-level configuration.
type SettingsDB struct {
	db *storm.DB
}

// OpenSettingsDB opens (creating if necessary) the settings database under
// rootDir.
func OpenSettingsDB(rootDir string) (*SettingsDB, error) {
	db, err := storm.Open(filepath.Join(rootDir, settingsDbFilename))
	if err != nil {
		if err == bolt.ErrTimeout {
			// timeout error occurs if storm fails to acquire a lock
			// on the database file
			return nil, fmt.Errorf("settings database is in use by another process")
		}
		return nil, fmt.Errorf("error opening settings database: %s", err.Error())
	}

	return &SettingsDB{db: db}, nil
}

// Close releases the underlying database.
func (sdb *SettingsDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SettingsDB) SaveUserConfigValue(key string, value interface{}) error {
	return sdb.db.Set(settingsDbBucketName, key, value)
}

func (sdb *SettingsDB) ReadUserConfigValue(key string, valueOut interface{}) error {
	return sdb.db.Get(settingsDbBucketName, key, valueOut)
}

func (sdb *SettingsDB) DeleteUserConfigValue(key string) error {
	return sdb.db.Delete(settingsDbBucketName, key)
}

func (sdb *SettingsDB) SetBoolConfigValueForKey(key string, value bool) {
	if err := sdb.SaveUserConfigValue(key, value); err != nil {
		log.Errorf("error setting config value for key: %s, error: %v", key, err)
	}
}

func (sdb *SettingsDB) SetIntConfigValueForKey(key string, value int) {
	if err := sdb.SaveUserConfigValue(key, value); err != nil {
		log.Errorf("error setting config value for key: %s, error: %v", key, err)
	}
}

func (sdb *SettingsDB) SetStringConfigValueForKey(key, value string) {
	if err := sdb.SaveUserConfigValue(key, value); err != nil {
		log.Errorf("error setting config value for key: %s, error: %v", key, err)
	}
}

func (sdb *SettingsDB) ReadBoolConfigValueForKey(key string, defaultValue bool) bool {
	value := defaultValue
	if err := sdb.ReadUserConfigValue(key, &value); err != nil && err != storm.ErrNotFound {
		log.Errorf("error reading config value for key: %s, error: %v", key, err)
	}
	return value
}

func (sdb *SettingsDB) ReadIntConfigValueForKey(key string, defaultValue int) int {
	value := defaultValue
	if err := sdb.ReadUserConfigValue(key, &value); err != nil && err != storm.ErrNotFound {
		log.Errorf("error reading config value for key: %s, error: %v", key, err)
	}
	return value
}

func (sdb *SettingsDB) ReadStringConfigValueForKey(key string, defaultValue string) string {
	value := defaultValue
	if err := sdb.ReadUserConfigValue(key, &value); err != nil && err != storm.ErrNotFound {
		log.Errorf("error reading config value for key: %s, error: %v", key, err)
	}
	return value
}
