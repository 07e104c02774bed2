package store

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/catalogfi/barter/pkg/swap"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// Store owns the swap collection. It is mutated only by CreateSwap (append)
// and CloseSwap (single terminal update on one record).
type Store interface {
	// CreateSwap persists the swap and assigns the next sequential id,
	// written back into s.ID.
	CreateSwap(s *swap.Swap) error

	// Swap returns the swap with the given id.
	Swap(id uint64) (swap.Swap, error)

	// Swaps lists swaps matching the filter, oldest first.
	Swaps(filter Filter) ([]swap.Swap, error)

	// CloseSwap transitions an active swap to the given terminal status.
	// It fails with swap.ErrSwapClosed if the swap is already terminal,
	// so closed swaps stay closed no matter how often it is called.
	CloseSwap(id uint64, status swap.Status, at time.Time) error
}

// Filter narrows a Swaps listing. The zero value matches everything.
type Filter struct {
	Party   *common.Address // matches initiator or counterparty
	Status  swap.Status     // swap.Unknown matches any status
	Page    int
	PerPage int
}

type SwapRecord struct {
	gorm.Model

	Initiator    string
	Counterparty string
	Status       swap.Status
	ExpiresAt    *time.Time
	ClosedAt     *time.Time
	Legs         []LegRecord `gorm:"foreignKey:SwapID"`
}

type LegRecord struct {
	ID     uint `gorm:"primarykey"`
	SwapID uint `gorm:"index"`
	Idx    int
	Asset  string // registry contract address
	Token  string // decimal token id
	Owner  string
	Role   swap.Role
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&SwapRecord{}, &LegRecord{}); err != nil {
		return nil, err
	}
	return &store{db: db}, nil
}

func (s *store) CreateSwap(sw *swap.Swap) error {
	record := SwapRecord{
		Initiator:    sw.Initiator.Hex(),
		Counterparty: sw.Counterparty.Hex(),
		Status:       sw.Status,
		ExpiresAt:    sw.ExpiresAt,
		Legs:         make([]LegRecord, len(sw.Legs)),
	}
	for i, leg := range sw.Legs {
		record.Legs[i] = LegRecord{
			Idx:   i,
			Asset: leg.Asset.Contract.Hex(),
			Token: leg.Asset.TokenID.String(),
			Owner: leg.Owner.Hex(),
			Role:  leg.Role,
		}
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	sw.ID = uint64(record.ID)
	sw.CreatedAt = record.CreatedAt
	return nil
}

func (s *store) Swap(id uint64) (swap.Swap, error) {
	var record SwapRecord
	err := s.db.Preload("Legs", func(db *gorm.DB) *gorm.DB {
		return db.Order("leg_records.idx ASC")
	}).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return swap.Swap{}, swap.ErrSwapNotFound
	}
	if err != nil {
		return swap.Swap{}, err
	}
	return record.Swap()
}

func (s *store) Swaps(filter Filter) ([]swap.Swap, error) {
	query := s.db.Model(&SwapRecord{})
	if filter.Party != nil {
		hex := filter.Party.Hex()
		query = query.Where("initiator = ? OR counterparty = ?", hex, hex)
	}
	if filter.Status != swap.Unknown {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var records []SwapRecord
	if err := query.Order("id ASC").Preload("Legs", func(db *gorm.DB) *gorm.DB {
		return db.Order("leg_records.idx ASC")
	}).Find(&records).Error; err != nil {
		return nil, err
	}

	swaps := make([]swap.Swap, len(records))
	for i, record := range records {
		sw, err := record.Swap()
		if err != nil {
			return nil, err
		}
		swaps[i] = sw
	}
	return swaps, nil
}

func (s *store) CloseSwap(id uint64, status swap.Status, at time.Time) error {
	if status != swap.Executed && status != swap.Cancelled {
		return fmt.Errorf("close to non-terminal status %s", status)
	}
	tx := s.db.Model(&SwapRecord{}).
		Where("id = ? AND status = ?", id, swap.Active).
		Updates(map[string]interface{}{"status": status, "closed_at": at})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		// Either the swap does not exist or it is already terminal.
		var record SwapRecord
		if err := s.db.Select("id").First(&record, id).Error; err != nil {
			return swap.ErrSwapNotFound
		}
		return swap.ErrSwapClosed
	}
	return nil
}

// Swap converts the stored record back into the domain entity.
func (r SwapRecord) Swap() (swap.Swap, error) {
	legs := make([]swap.Leg, len(r.Legs))
	for i, leg := range r.Legs {
		tokenID, ok := new(big.Int).SetString(leg.Token, 10)
		if !ok {
			return swap.Swap{}, fmt.Errorf("corrupt token id %q on swap %d", leg.Token, r.ID)
		}
		legs[i] = swap.Leg{
			Asset: swap.NewAsset(common.HexToAddress(leg.Asset), tokenID),
			Owner: common.HexToAddress(leg.Owner),
			Role:  leg.Role,
		}
	}
	return swap.Swap{
		ID:           uint64(r.ID),
		Initiator:    common.HexToAddress(r.Initiator),
		Counterparty: common.HexToAddress(r.Counterparty),
		Legs:         legs,
		ExpiresAt:    r.ExpiresAt,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		ClosedAt:     r.ClosedAt,
	}, nil
}
