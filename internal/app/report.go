package app

import (
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// BalanceReport renders the balance, the daily totals of the last week and
// the recent records as plain text.
func (a *Application) BalanceReport(now time.Time) string {
	m := a.monitor.Model()
	limit := a.appConfig.Ledger.DetailLimit
	var sb strings.Builder
	sb.WriteString("Hotel Angelina - " + now.In(time.Local).Format("2006-01-02 15:04") + "\n\n")
	sb.WriteString(ledger.RenderBalanceText(a.monitor.Balance()))

	days := ledger.DailyTotals(m.Sales(), m.Stays(), m.Expenses(), time.Local)
	if len(days) > 7 {
		days = days[len(days)-7:]
	}
	if len(days) > 0 {
		sb.WriteString("\nDAYS\n")
		for _, d := range days {
			sb.WriteString(d.Day + "  " + ledger.FormatCOP(d.Income) + "  " +
				ledger.FormatCOP(-d.Expenses) + "  = " + ledger.FormatCOP(d.Net) + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(ledger.RenderDetailText(ledger.ProjectDetail(m.Sales(), m.Stays(), m.Expenses(), limit), time.Local))
	return sb.String()
}

func (a *Application) newReportMessage(now time.Time) (*gomail.Message, error) {
	cfg := a.appConfig.Mail
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, errors.New("mail from and to are required")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.From)
	msg.SetHeader("To", cfg.To...)
	msg.SetHeader("Subject", "Balance "+now.In(time.Local).Format("2006-01-02"))
	msg.SetBody("text/plain", a.BalanceReport(now))
	return msg, nil
}

// SendBalanceReport mails the balance report to the configured recipients.
func (a *Application) SendBalanceReport(now time.Time) error {
	msg, err := a.newReportMessage(now)
	if err != nil {
		return err
	}
	if a.mailSender != nil {
		return gomail.Send(a.mailSender, msg)
	}
	cfg := a.appConfig.Mail
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Passwd)
	return errors.Wrap(d.DialAndSend(msg), "send balance report")
}

// SchedBalanceReportTask mails the balance report.
func (a *Application) SchedBalanceReportTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if err := a.SendBalanceReport(time.Now()); err != nil {
		zap.L().Error("balance report failed",
			zap.String("namespace", "app"),
			zap.Error(err))
		return
	}
	zap.L().Info("balance report sent",
		zap.String("namespace", "app"),
		zap.Strings("to", a.appConfig.Mail.To))
}
