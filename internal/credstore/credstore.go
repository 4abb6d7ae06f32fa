// Package credstore stores Fable API credentials in a local SQLite
// database with AES-256-GCM field encryption, so repeated exports don't
// require re-capturing a token.
package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jdebolt/fable-export/internal/crypto"
	"github.com/jdebolt/fable-export/internal/entities"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "FABLE_TOKEN_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".fable-export-key"
)

// Store provides encrypted storage for Fable credentials
type Store struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

// Config holds configuration for the credential store
type Config struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte encryption key.
	// If empty, it is loaded from the environment or the key file.
	EncryptionKey string

	// KeyFilePath overrides the default ~/.fable-export-key location
	KeyFilePath string
}

// New creates a credential store, generating and persisting an encryption
// key on first use.
func New(cfg Config) (*Store, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.FableCredential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db, encryptor: encryptor}, nil
}

// resolveEncryptionKey determines the encryption key from various sources
func resolveEncryptionKey(cfg Config) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return string(data), nil
	}

	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}

	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}

	fmt.Printf("Generated new encryption key and saved to %s\n", keyFilePath)
	return newKey, nil
}

// Save upserts the credentials for a user with encryption.
func (s *Store) Save(cred *entities.DecryptedCredential) error {
	encToken, err := s.encryptor.Encrypt(cred.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt auth token: %w", err)
	}

	encEmail, err := s.encryptor.Encrypt(cred.Email)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}

	dbCred := &entities.FableCredential{
		UserID:    cred.UserID,
		AuthToken: encToken,
		Email:     encEmail,
	}

	result := s.db.Where("user_id = ?", cred.UserID).
		Assign(map[string]interface{}{
			"auth_token": encToken,
			"email":      encEmail,
			"updated_at": time.Now(),
		}).
		FirstOrCreate(dbCred)
	if result.Error != nil {
		return fmt.Errorf("failed to save credentials: %w", result.Error)
	}
	return nil
}

// Get retrieves and decrypts the credentials for a user. A missing record
// returns nil, not an error.
func (s *Store) Get(userID string) (*entities.DecryptedCredential, error) {
	var dbCred entities.FableCredential
	result := s.db.Where("user_id = ?", userID).First(&dbCred)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credentials: %w", result.Error)
	}
	return s.decrypt(&dbCred)
}

// Latest retrieves the most recently updated credentials, for the common
// single-account case.
func (s *Store) Latest() (*entities.DecryptedCredential, error) {
	var dbCred entities.FableCredential
	result := s.db.Order("updated_at DESC").First(&dbCred)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credentials: %w", result.Error)
	}
	return s.decrypt(&dbCred)
}

// Delete removes the credentials for a user.
func (s *Store) Delete(userID string) error {
	result := s.db.Where("user_id = ?", userID).Delete(&entities.FableCredential{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete credentials: %w", result.Error)
	}
	return nil
}

func (s *Store) decrypt(dbCred *entities.FableCredential) (*entities.DecryptedCredential, error) {
	token, err := s.encryptor.Decrypt(dbCred.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt auth token: %w", err)
	}

	email, err := s.encryptor.Decrypt(dbCred.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt email: %w", err)
	}

	return &entities.DecryptedCredential{
		UserID:    dbCred.UserID,
		AuthToken: token,
		Email:     email,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
