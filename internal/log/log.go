package log

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyMsg:   "action",
			logrus.FieldKeyLevel: "level",
		},
	})
	return l
}

// SetOutput redirects every log line, e.g. to stdout+file.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// SetLevel accepts logrus level names; unknown names keep the current level.
func SetLevel(level string) {
	if lv, err := logrus.ParseLevel(level); err == nil {
		std.SetLevel(lv)
	}
}

// Logger exposes the underlying logger for libraries that want an io.Writer or *logrus.Logger.
func Logger() *logrus.Logger { return std }

func entry(c *fiber.Ctx, fields map[string]any) *logrus.Entry {
	e := logrus.NewEntry(std)
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			e = e.WithField("user_id", uid)
		}
	}
	return e
}

// Info logs a routine event. c may be nil for events raised outside a
// request (client containers, jobs).
func Info(c *fiber.Ctx, action string, fields map[string]any) { entry(c, fields).Info(action) }

func Debug(c *fiber.Ctx, action string, fields map[string]any) { entry(c, fields).Debug(action) }

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, fields).WithField("audit", true).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry(c, fields)
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	e.Error(action)
}
