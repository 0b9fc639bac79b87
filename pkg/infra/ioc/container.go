package ioc

import (
	"context"
	"log/slog"
	"os"
	"time"

	container "github.com/golobby/container/v3"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common "github.com/psavelis/ledger-book/pkg/domain"
	book_out "github.com/psavelis/ledger-book/pkg/domain/book/ports/out"
	db "github.com/psavelis/ledger-book/pkg/infra/db/mongodb"
)

type ContainerBuilder struct {
	Container container.Container
}

func NewContainerBuilder() *ContainerBuilder {
	c := container.New()

	b := &ContainerBuilder{
		c,
	}

	err := c.Singleton(func() container.Container {
		return b.Container
	})

	if err != nil {
		slog.Error("Failed to register *container.Container in NewContainerBuilder.")
		panic(err)
	}

	err = c.Singleton(func() *ContainerBuilder {
		return b
	})

	if err != nil {
		slog.Error("Failed to register *ContainerBuilder in NewContainerBuilder.")
		panic(err)
	}

	return b
}

func (b *ContainerBuilder) Build() container.Container {
	return b.Container
}

func (b *ContainerBuilder) WithEnvFile() *ContainerBuilder {
	if os.Getenv("DEV_ENV") == "true" {
		err := godotenv.Load()
		if err != nil {
			slog.Error("Failed to load .env file")
			panic(err)
		}
	}

	err := b.Container.Singleton(func() (common.Config, error) {
		return EnvironmentConfig()
	})

	if err != nil {
		slog.Error("Failed to load EnvironmentConfig.")
		panic(err)
	}

	return b
}

// WithMongoDB wires the mongo client, database handle, and book repository (§6), in that
// dependency order, as singletons.
func (b *ContainerBuilder) WithMongoDB() *ContainerBuilder {
	c := b.Container

	err := c.Singleton(func() (*mongo.Client, error) {
		var config common.Config
		if err := c.Resolve(&config); err != nil {
			slog.Error("Failed to resolve config for mongo.Client.", "err", err)
			return nil, err
		}

		mongoOptions := options.Client().ApplyURI(config.MongoDB.URI)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, mongoOptions)
		if err != nil {
			slog.Error("Failed to connect to MongoDB.", "err", err)
			return nil, err
		}

		return client, nil
	})

	if err != nil {
		slog.Error("Failed to load mongo.Client.")
		panic(err)
	}

	err = c.Singleton(func() (*mongo.Database, error) {
		var config common.Config
		if err := c.Resolve(&config); err != nil {
			slog.Error("Failed to resolve config for mongo.Database.", "err", err)
			return nil, err
		}

		var client *mongo.Client
		if err := c.Resolve(&client); err != nil {
			slog.Error("Failed to resolve mongo.Client for mongo.Database.", "err", err)
			return nil, err
		}

		return client.Database(config.MongoDB.DBName), nil
	})

	if err != nil {
		slog.Error("Failed to load mongo.Database.")
		panic(err)
	}

	err = c.Singleton(func() (book_out.BookRepository, error) {
		var database *mongo.Database
		if err := c.Resolve(&database); err != nil {
			slog.Error("Failed to resolve mongo.Database for book_out.BookRepository.", "err", err)
			return nil, err
		}

		return db.NewBookRepository(database), nil
	})

	if err != nil {
		slog.Error("Failed to load book_out.BookRepository.")
		panic(err)
	}

	return b
}

func (b *ContainerBuilder) With(resolver interface{}) *ContainerBuilder {
	if err := b.Container.Singleton(resolver); err != nil {
		slog.Error("Failed to register resolver in ContainerBuilder.With.", "err", err)
		panic(err)
	}

	return b
}
