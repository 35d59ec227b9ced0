package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harbourbee/harbourbee-backend/internal/config"
	"github.com/harbourbee/harbourbee-backend/internal/db"
	"github.com/harbourbee/harbourbee-backend/internal/model"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("users already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := []model.User{
			{UID: "crew-arcadia", Email: "crew@arcadia.example", DisplayName: "Arcadia Crew", Role: "crew"},
			{UID: "crew-meridian", Email: "crew@meridian.example", DisplayName: "Meridian Crew", Role: "crew"},
			{UID: "vendor-chandler", Email: "ops@chandler.example", DisplayName: "Chandler Supplies", Role: "vendor", VendorID: "vnd-" + uuid.NewString()[:8]},
			{UID: "ops-staff-1", Email: "staff@harbourbee.example", DisplayName: "Ops Staff", Role: "ops_staff"},
			{UID: "ops-admin-1", Email: "admin@harbourbee.example", DisplayName: "Ops Admin", Role: "ops_admin"},
			{UID: "finance-1", Email: "finance@harbourbee.example", DisplayName: "Finance", Role: "finance"},
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		assignments := []model.VesselAssignment{
			{UserUID: "crew-arcadia", VesselIMO: "9123456", Status: model.AssignmentStatusActive, StartedAt: time.Now().Add(-30 * 24 * time.Hour)},
			{UserUID: "crew-meridian", VesselIMO: "9654321", Status: model.AssignmentStatusActive, StartedAt: time.Now().Add(-10 * 24 * time.Hour)},
		}
		if err := tx.Create(&assignments).Error; err != nil {
			return fmt.Errorf("seed assignments: %w", err)
		}

		pool := model.Pool{
			Port:       "Rotterdam",
			Status:     model.PoolStatusOpen,
			OrderCount: 2,
			TargetDate: time.Now().Add(48 * time.Hour),
			TotalValue: 1840,
		}
		if err := tx.Create(&pool).Error; err != nil {
			return fmt.Errorf("seed pool: %w", err)
		}

		orders := []model.Order{
			{
				BuyerUID: "crew-arcadia", VesselIMO: "9123456", Port: "Rotterdam",
				PoolID: &pool.ID, Status: model.OrderStatusPooled,
				Items: []model.OrderItem{
					{ProductID: "prov-flour-25kg", Quantity: 4, UnitPrice: 60},
					{ProductID: "prov-coffee-5kg", Quantity: 8, UnitPrice: 55},
				},
				Subtotal: 680, DeliveryFeeProvisional: 50, ChargedAmount: 50,
				PaymentStatus: model.PaymentStatusPaid, ChargeRef: "ch_" + uuid.NewString(),
			},
			{
				BuyerUID: "crew-meridian", VesselIMO: "9654321", Port: "Rotterdam",
				PoolID: &pool.ID, Status: model.OrderStatusPooled,
				Items: []model.OrderItem{
					{ProductID: "prov-engine-oil-20l", Quantity: 6, UnitPrice: 120},
					{ProductID: "prov-rice-50kg", Quantity: 4, UnitPrice: 110},
				},
				Subtotal: 1160, DeliveryFeeProvisional: 50, ChargedAmount: 50,
				PaymentStatus: model.PaymentStatusPaid, ChargeRef: "ch_" + uuid.NewString(),
			},
		}
		if err := tx.Create(&orders).Error; err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}

		notifications := []model.Notification{
			{
				RecipientUID: "crew-arcadia", Title: "Order pooled",
				Message:    "Your order joined the Rotterdam pool; provisional delivery fee 50.00.",
				ObjectType: model.ObjectTypeOrder, ObjectID: fmt.Sprint(orders[0].ID),
				Priority: model.NotificationPriorityInformational, VesselIMO: "9123456",
			},
			{
				RecipientUID: "crew-arcadia", Title: "Pool closing soon",
				Message:    "The Rotterdam pool locks in 48 hours; one more vessel unlocks free delivery.",
				ObjectType: model.ObjectTypePool, ObjectID: fmt.Sprint(pool.ID),
				Priority: model.NotificationPriorityImportant, VesselIMO: "9123456",
			},
			{
				Title:      "Vendor payout pending",
				Message:    "Weekly payout run scheduled.",
				ObjectType: model.ObjectTypeFinance,
				Priority:   model.NotificationPriorityCritical,
				VendorID:   users[2].VendorID,
			},
		}
		for i := range notifications {
			notifications[i].PriorityWeight = model.PriorityWeightFor(notifications[i].Priority)
		}
		if err := tx.Create(&notifications).Error; err != nil {
			return fmt.Errorf("seed notifications: %w", err)
		}

		exceptions := []model.Exception{
			{
				Title: "Delivery launch delayed", Description: "Harbour traffic closed the western approach.",
				ObjectType: model.ObjectTypeDelivery, ObjectID: fmt.Sprint(pool.ID),
				Severity: model.ExceptionSeverityHigh, Status: model.ExceptionStatusOpen,
				DetectedAt: time.Now().Add(-2 * time.Hour), VesselIMO: "9123456",
			},
			{
				Title: "Invoice mismatch", Description: "Vendor invoice total differs from order subtotal.",
				ObjectType: model.ObjectTypeFinance,
				Severity:   model.ExceptionSeverityMedium, Status: model.ExceptionStatusOpen,
				DetectedAt: time.Now().Add(-26 * time.Hour), VendorID: users[2].VendorID,
			},
		}
		for i := range exceptions {
			exceptions[i].SeverityWeight = model.SeverityWeightFor(exceptions[i].Severity)
		}
		if err := tx.Create(&exceptions).Error; err != nil {
			return fmt.Errorf("seed exceptions: %w", err)
		}

		log.Printf("seeded %d users, %d orders, %d notifications, %d exceptions", len(users), len(orders), len(notifications), len(exceptions))
		return nil
	})
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.User{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
