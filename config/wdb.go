package config

import (
	"github.com/brickfolio/brickfolio/config/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Wdb struct {
	Db *gorm.DB
}

func NewWdb(dsn string, sqliteDir string, useSqlite bool) *Wdb {
	var db *gorm.DB
	var err error
	if useSqlite {
		db, err = gorm.Open(sqlite.Open(sqliteDir+"/config.sqlite"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
	} else {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
	}
	if err != nil {
		panic(err)
	}
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.LinkState{})
}

func (w *Wdb) GetLinkState() (st schema.LinkState, err error) {
	err = w.Db.First(&st).Error
	if err == gorm.ErrRecordNotFound {
		return schema.LinkState{}, nil
	}
	return
}

func (w *Wdb) SaveLinkState(estateAddr string) error {
	st, err := w.GetLinkState()
	if err != nil {
		return err
	}
	st.ID = 1
	st.EstateAddress = estateAddr
	st.Linked = true
	return w.Db.Save(&st).Error
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
