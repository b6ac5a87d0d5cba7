package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a missing primary key before insert. Ids are minted by the
// application so the same models migrate on Postgres and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error        { assignID(&u.ID); return nil }
func (s *Seller) BeforeCreate(*gorm.DB) error      { assignID(&s.ID); return nil }
func (i *Item) BeforeCreate(*gorm.DB) error        { assignID(&i.ID); return nil }
func (o *ItemOption) BeforeCreate(*gorm.DB) error  { assignID(&o.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error       { assignID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(*gorm.DB) error   { assignID(&o.ID); return nil }
func (c *Cart) BeforeCreate(*gorm.DB) error        { assignID(&c.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error    { assignID(&c.ID); return nil }
func (f *Follow) BeforeCreate(*gorm.DB) error      { assignID(&f.ID); return nil }
func (r *ItemReview) BeforeCreate(*gorm.DB) error  { assignID(&r.ID); return nil }
func (q *QnaPost) BeforeCreate(*gorm.DB) error     { assignID(&q.ID); return nil }
func (e *OutboxEvent) BeforeCreate(*gorm.DB) error { assignID(&e.ID); return nil }

// All lists every persisted model in dependency order. Tests hand it to
// AutoMigrate; production schema comes from the goose migrations.
func All() []any {
	return []any{
		&User{},
		&Seller{},
		&Item{},
		&ItemOption{},
		&Order{},
		&OrderItem{},
		&Cart{},
		&CartItem{},
		&Follow{},
		&ItemReview{},
		&QnaPost{},
		&OutboxEvent{},
	}
}
