package log

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "action",
		},
	})
	return l
}

// SetOutput redirects all entries, e.g. to a file tee or a test buffer.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

// SetLevel accepts logrus level names; unknown names leave the level unchanged.
func SetLevel(name string) {
	if lvl, err := logrus.ParseLevel(name); err == nil {
		logger.SetLevel(lvl)
	}
}

func entry(c *fiber.Ctx, kind string, err error, fields map[string]any) *logrus.Entry {
	f := logrus.Fields{"kind": kind}
	if len(fields) > 0 {
		f["fields"] = fields
	}
	if c != nil {
		f["ip"] = c.IP()
		f["method"] = c.Method()
		f["path"] = c.Path()
		if st := c.Response().StatusCode(); st != 0 {
			f["status"] = st
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			f["req_id"] = rid
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			f["user_id"] = uid
		}
	}
	if err != nil {
		f["err"] = err.Error()
	}
	return logger.WithFields(f)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, "info", nil, fields).Info(action)
}
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, "audit", nil, fields).Info(action)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, "security", nil, fields).Warn(action)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry(c, "error", err, fields).Error(action)
}
