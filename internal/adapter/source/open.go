package source

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-registry/internal/adapter/db/gormsource"
	"user-registry/internal/usecase/registry"
)

// Openers builds the clients a location needs. Only the opener for the
// selected kind is called.
type Openers struct {
	HTTPClient *http.Client
	S3         func(ctx context.Context) (GetObjectAPI, error)
	DB         func(driver, dsn string) (*gorm.DB, error)
}

// Open parses raw and returns the source it names.
func Open(ctx context.Context, raw string, o Openers, log *zap.Logger) (registry.Source, error) {
	loc, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case KindFile:
		return NewFile(loc.Path, log), nil
	case KindHTTP:
		return NewHTTP(o.HTTPClient, loc.URL, log), nil
	case KindS3:
		if o.S3 == nil {
			return nil, fmt.Errorf("source %q: s3 is not configured", raw)
		}
		api, err := o.S3(ctx)
		if err != nil {
			return nil, fmt.Errorf("open s3 client: %w", err)
		}
		return NewS3(api, loc.Bucket, loc.Key, log), nil
	case KindSQL:
		if o.DB == nil {
			return nil, fmt.Errorf("source %q: database is not configured", raw)
		}
		db, err := o.DB(loc.Driver, loc.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", loc.Driver, err)
		}
		return gormsource.New(db, loc.Driver+":users", log), nil
	default:
		return nil, fmt.Errorf("source %q: unsupported kind %s", raw, loc.Kind)
	}
}
