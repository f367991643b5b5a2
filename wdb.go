package brickfolio

import (
	"github.com/brickfolio/brickfolio/schema"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	db, err := gorm.Open(sqlite.Open(dbDir+"/brickfolio.sqlite"), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.Activity{})
}

// RecordActivity appends one intent outcome to the audit trail. Failures
// here are logged and dropped; the trail never blocks a ledger call.
func (w *Wdb) RecordActivity(act schema.Activity) {
	if act.ID == "" {
		act.ID = uuid.NewString()
	}
	if err := w.Db.Create(&act).Error; err != nil {
		log.Warn("record activity", "err", err, "kind", act.Kind)
	}
}

func (w *Wdb) GetActivities(account string, limit int) ([]schema.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	res := make([]schema.Activity, 0, limit)
	err := w.Db.Where("account = ?", account).Order("created_at desc").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
