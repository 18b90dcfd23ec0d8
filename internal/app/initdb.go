package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/identity"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	SuperEmail           = "admin@hotelangelina.co"
	SuperDefaultPassword = "angelina"
)

// checkSuper makes sure the default super operator exists and can sign in.
func (a *Application) checkSuper() {
	var operator domain.SysOpr
	err := a.gormDB.Where("email = ?", SuperEmail).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.identity.EnsureOperator(context.Background(), SuperEmail, SuperDefaultPassword,
			"administrator", identity.LevelSuper); err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("email", SuperEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetLevel := !strings.EqualFold(operator.Level, identity.LevelSuper)
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)
	if !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetLevel {
		updates["level"] = identity.LevelSuper
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}
	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("email", SuperEmail),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// checkProducts seeds the default catalogue into an empty products collection.
func (a *Application) checkProducts() {
	if !a.appConfig.Ledger.SeedProducts {
		return
	}
	if _, err := a.SeedProducts(context.Background()); err != nil {
		zap.L().Error("failed to seed default products", zap.Error(err))
	}
}

// SeedProducts writes the default catalogue if no product exists yet.
func (a *Application) SeedProducts(ctx context.Context) (int, error) {
	n, err := ledger.SeedDefaults(ctx, a.store, a.appConfig.Ledger.SeedWorkers)
	if err != nil {
		return n, err
	}
	if n > 0 {
		zap.L().Info("initialized default products", zap.Int("count", n))
	}
	return n, nil
}
