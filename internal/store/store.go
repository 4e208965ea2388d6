// Package store keeps the gateway's conversation log in an in-memory sqlite
// database. The log deliberately dies with the process; there is no
// cross-restart conversation continuity.
package store

import (
	"log"
	"sync"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Conversation struct {
	ID        uuid.UUID `gorm:"primary_key" json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	ConversationID uuid.UUID `gorm:"index" json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// SQLite only supports one writer at a time, so we need a lock whenever we
// write to the database.
var dbMutex sync.Mutex

func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// An in-memory sqlite database exists per connection; keep the pool at
	// one so every query sees the same database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := GetMigrator(db).Migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(&Conversation{}, &ChatMessage{})
			},
		},
	})

	migrator.InitSchema(func(txn *gorm.DB) error {
		// Run by the migrator if no previous migration is detected; creates
		// the latest schema directly instead of replaying migrations.
		log.Println("clean database detected, running full schema initialization")
		return txn.AutoMigrate(&Conversation{}, &ChatMessage{})
	})

	return migrator
}

func ListConversations(db *gorm.DB) ([]Conversation, error) {
	var conversations []Conversation
	err := db.Order("created_at ASC").Find(&conversations).Error
	return conversations, err
}

func CreateConversation(db *gorm.DB, conversation *Conversation) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.Create(conversation).Error
}

func GetConversation(db *gorm.DB, conversationID uuid.UUID) (Conversation, error) {
	var conversation Conversation
	err := db.First(&conversation, "id = ?", conversationID).Error
	return conversation, err
}

func RenameConversation(db *gorm.DB, conversationID uuid.UUID, title string) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.Model(&Conversation{ID: conversationID}).Update("title", title).Error
}

func DeleteConversation(db *gorm.DB, conversationID uuid.UUID) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	if err := db.Delete(&ChatMessage{}, "conversation_id = ?", conversationID).Error; err != nil {
		return err
	}
	return db.Delete(&Conversation{}, "id = ?", conversationID).Error
}

func GetHistory(db *gorm.DB, conversationID uuid.UUID) ([]ChatMessage, error) {
	var history []ChatMessage
	err := db.Where("conversation_id = ?", conversationID).Order("id ASC").Find(&history).Error
	return history, err
}

func AppendMessage(db *gorm.DB, message *ChatMessage) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()
	return db.Create(message).Error
}
