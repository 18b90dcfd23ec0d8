package app

import (
	"os"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/metrics"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// Gauge names written by the scheduled jobs.
const (
	GaugeTotalIncome   = "ledger_total_income"
	GaugeTotalExpenses = "ledger_total_expenses"
	GaugeNetBalance    = "ledger_net_balance"
	GaugeSessions      = "ledger_sessions"
	GaugeSystemCPU     = "system_cpuuse"
	GaugeSystemMem     = "system_memuse"
	GaugeProcessCPU    = "process_cpuuse"
	GaugeProcessMem    = "process_memuse"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSessionMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	spec := a.appConfig.Ledger.BalanceSchedule
	if spec == "" {
		spec = "@every 5m"
	}
	_, err = a.sched.AddFunc(spec, a.SchedBalanceSnapshotTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@every 60s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedOprLogCleanTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if a.appConfig.Mail.Enabled {
		_, err = a.sched.AddFunc(a.appConfig.Mail.Schedule, a.SchedBalanceReportTask)
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedBalanceSnapshotTask records the current balance as metric samples.
func (a *Application) SchedBalanceSnapshotTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	b := a.monitor.Balance()
	metrics.SetGauge(GaugeTotalIncome, b.TotalIncome)
	metrics.SetGauge(GaugeTotalExpenses, b.TotalExpenses)
	metrics.SetGauge(GaugeNetBalance, b.NetBalance)
	zap.L().Debug("balance snapshot",
		zap.String("namespace", "app"),
		zap.Int64("income", b.TotalIncome),
		zap.Int64("expenses", b.TotalExpenses),
		zap.Int64("net", b.NetBalance))
}

// SchedSessionMonitorTask records the number of live ledger sessions.
func (a *Application) SchedSessionMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	metrics.SetGauge(GaugeSessions, int64(a.sessions.Len()))
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(cpuuse) > 0 {
		metrics.SetGauge(GaugeSystemCPU, int64(cpuuse[0]*100)) // percentage * 100
	}

	meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge(GaugeSystemMem, int64(meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge(GaugeProcessCPU, int64(cpuuse*100))
	}
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge(GaugeProcessMem, int64(meminfo.RSS/1024/1024))
	}
}

// SchedOprLogCleanTask drops operator log entries older than a year.
func (a *Application) SchedOprLogCleanTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	a.gormDB.
		Where("opt_time < ? ", time.Now().
			Add(-time.Hour*24*365)).Delete(&domain.SysOprLog{})
}

// onCollectionChanged keeps per collection document counts as gauges.
func (a *Application) onCollectionChanged(collection string) {
	m := a.monitor.Model()
	var n int
	switch collection {
	case domain.CollectionProducts:
		n = len(m.Products())
	case domain.CollectionSales:
		n = len(m.Sales())
	case domain.CollectionStays:
		n = len(m.Stays())
	case domain.CollectionExpenses:
		n = len(m.Expenses())
	default:
		return
	}
	metrics.SetGauge("ledger_"+collection+"_count", int64(n))
}
