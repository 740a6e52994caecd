// main.go
//
// Local stand-in for the hosted no-code data API, for development without
// network access or credentials. Speaks the same surface the gateway's
// client uses: /create, /read, /update, /delete with the success envelope,
// filter/sort/limit parameters, and the Instance header. State lives in a
// SQLite file.
package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type userRecord struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Name         string
	Email        string
	PasswordHash string
	Plan         string
	PaymentProof string
}

type siteRecord struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserID   uint64
	SiteURL  string
	SiteName string
	APIKey   string `gorm:"column:api_key"`
}

type threadRecord struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	SiteID         uint64
	PageIdentifier string
	PageTitle      string
}

type commentRecord struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	ThreadID    uint64
	AuthorName  string
	AuthorEmail string
	Message     string
	IPAddress   string `gorm:"column:ip_address"`
	Visible     bool
	CreatedAt   string
}

var tables = map[string]string{
	"users":    "user_records",
	"sites":    "site_records",
	"threads":  "thread_records",
	"comments": "comment_records",
}

// tableColumns is the allow-list of filterable/sortable columns. Filter and
// sort names reach the WHERE/ORDER BY clause, so only known columns pass.
var tableColumns = map[string]map[string]bool{
	"users":    columnSet("id", "name", "email", "password_hash", "plan", "payment_proof"),
	"sites":    columnSet("id", "user_id", "site_url", "site_name", "api_key"),
	"threads":  columnSet("id", "site_id", "page_identifier", "page_title"),
	"comments": columnSet("id", "thread_id", "author_name", "author_email", "message", "ip_address", "visible", "created_at"),
}

func columnSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// reserved query parameters that are not column filters
var reservedParams = map[string]bool{
	"sort":         true,
	"order":        true,
	"limit":        true,
	"includeTotal": true,
}

func openDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&userRecord{}, &siteRecord{}, &threadRecord{}, &commentRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

// newApp builds the emulator. An empty apiKey disables the bearer check.
func newApp(db *gorm.DB, apiKey string) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())

	// Instance and credential checks mirror the hosted service.
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("Instance") == "" {
			return envelopeError(c, fiber.StatusBadRequest, "Missing Instance header")
		}
		if apiKey != "" {
			auth := c.Get("Authorization")
			if auth != "Bearer "+apiKey {
				return envelopeError(c, fiber.StatusUnauthorized, "Invalid token")
			}
		}
		return c.Next()
	})

	app.Post("/create/:resource", func(c *fiber.Ctx) error {
		table, ok := tables[c.Params("resource")]
		if !ok {
			return envelopeError(c, fiber.StatusNotFound, "Unknown resource")
		}

		var record map[string]any
		if err := c.BodyParser(&record); err != nil {
			return envelopeError(c, fiber.StatusBadRequest, "Invalid JSON body")
		}
		if table == "comment_records" {
			if _, ok := record["created_at"]; !ok {
				record["created_at"] = time.Now().UTC().Format("2006-01-02 15:04:05")
			}
		}

		// The id read has to share the insert's connection.
		var id uint64
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Table(table).Create(record).Error; err != nil {
				return err
			}
			return tx.Raw("SELECT last_insert_rowid()").Scan(&id).Error
		})
		if err != nil {
			return envelopeError(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "success", "id": id})
	})

	app.Get("/read/:resource", func(c *fiber.Ctx) error {
		resource := c.Params("resource")
		table, ok := tables[resource]
		if !ok {
			return envelopeError(c, fiber.StatusNotFound, "Unknown resource")
		}
		columns := tableColumns[resource]

		tx := db.Table(table)
		var badColumn string
		c.Context().QueryArgs().VisitAll(func(key, value []byte) {
			k, v := string(key), string(value)
			if reservedParams[k] || badColumn != "" {
				return
			}
			field, in := strings.CutSuffix(k, "[in]")
			if !columns[field] {
				badColumn = field
				return
			}
			if in {
				tx = tx.Where(field+" IN ?", strings.Split(v, ","))
				return
			}
			tx = tx.Where(field+" = ?", v)
		})
		if badColumn != "" {
			return envelopeError(c, fiber.StatusBadRequest, "Unknown column "+badColumn)
		}

		var total int64
		if c.Query("includeTotal") == "true" {
			if err := tx.Count(&total).Error; err != nil {
				return envelopeError(c, fiber.StatusInternalServerError, err.Error())
			}
		}

		if sortField := c.Query("sort"); sortField != "" {
			if !columns[sortField] {
				return envelopeError(c, fiber.StatusBadRequest, "Unknown column "+sortField)
			}
			order := c.Query("order", "asc")
			if order != "desc" {
				order = "asc"
			}
			tx = tx.Order(sortField + " " + order)
		}
		if limit := c.QueryInt("limit"); limit > 0 {
			tx = tx.Limit(limit)
		}

		rows := []map[string]any{}
		if err := tx.Find(&rows).Error; err != nil {
			return envelopeError(c, fiber.StatusInternalServerError, err.Error())
		}

		resp := fiber.Map{"status": "success", "data": rows}
		if c.Query("includeTotal") == "true" {
			resp["total"] = total
		}
		return c.JSON(resp)
	})

	app.Put("/update/:resource/:id", func(c *fiber.Ctx) error {
		table, ok := tables[c.Params("resource")]
		if !ok {
			return envelopeError(c, fiber.StatusNotFound, "Unknown resource")
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return envelopeError(c, fiber.StatusBadRequest, "Invalid id")
		}

		var patch map[string]any
		if err := c.BodyParser(&patch); err != nil {
			return envelopeError(c, fiber.StatusBadRequest, "Invalid JSON body")
		}

		res := db.Table(table).Where("id = ?", id).Updates(patch)
		if res.Error != nil {
			return envelopeError(c, fiber.StatusInternalServerError, res.Error.Error())
		}
		if res.RowsAffected == 0 {
			return envelopeError(c, fiber.StatusNotFound, "Record not found")
		}
		return c.JSON(fiber.Map{"status": "success"})
	})

	app.Delete("/delete/:resource/:id", func(c *fiber.Ctx) error {
		table, ok := tables[c.Params("resource")]
		if !ok {
			return envelopeError(c, fiber.StatusNotFound, "Unknown resource")
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return envelopeError(c, fiber.StatusBadRequest, "Invalid id")
		}

		if err := db.Exec("DELETE FROM "+table+" WHERE id = ?", id).Error; err != nil {
			return envelopeError(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "success"})
	})

	return app
}

func main() {
	path := os.Getenv("DEVBACKEND_DB")
	if path == "" {
		path = "devbackend.db"
	}
	port := os.Getenv("DEVBACKEND_PORT")
	if port == "" {
		port = "4131"
	}
	apiKey := os.Getenv("DEVBACKEND_API_KEY")

	db, err := openDB(path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	app := newApp(db, apiKey)
	app.Use(logger.New())

	log.Printf("devbackend listening on :%s (db %s)", port, path)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start devbackend: %v", err)
	}
}

func envelopeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}
