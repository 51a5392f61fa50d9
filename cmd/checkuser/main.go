package main

import (
	"alcyxob/swimtrack/internal/config"
	"alcyxob/swimtrack/internal/domain"
	mongorepo "alcyxob/swimtrack/internal/repository/mongo"
	"alcyxob/swimtrack/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operator diagnostic for the profile collection. Looks up a profile by
// email or id and prints it; with -create, a missing profile is replaced
// with a default swimmer document, the same repair the server performs
// lazily on first authenticated request.
func main() {
	email := flag.String("email", "", "profile email to look up")
	id := flag.String("id", "", "profile object id to look up")
	create := flag.Bool("create", false, "create a default profile when none exists (email lookups only)")
	flag.Parse()

	if (*email == "") == (*id == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -email or -id is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		fatal("loading config: %v", err)
	}

	client, err := mongorepo.ConnectDB(cfg.Mongo.URI)
	if err != nil {
		fatal("connecting to MongoDB: %v", err)
	}
	defer mongorepo.DisconnectDB(client)

	userRepo := mongorepo.NewMongoUserRepository(client.Database(cfg.Mongo.Name))
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var user *domain.User
	if *email != "" {
		user, err = userRepo.GetByEmail(ctx, *email)
	} else {
		var objID primitive.ObjectID
		objID, err = primitive.ObjectIDFromHex(*id)
		if err != nil {
			fatal("invalid object id %q: %v", *id, err)
		}
		user, err = userRepo.GetByID(ctx, objID)
	}

	switch {
	case err == nil:
		printProfile(user)
	case errors.Is(err, repository.ErrNotFound) && *create && *email != "":
		name := *email
		if at := strings.Index(name, "@"); at > 0 {
			name = name[:at]
		}
		user = &domain.User{
			Name:  name,
			Email: *email,
			Role:  domain.RoleSwimmer,
		}
		createdID, err := userRepo.Create(ctx, user)
		if err != nil {
			fatal("creating default profile: %v", err)
		}
		user.ID = createdID
		fmt.Fprintln(os.Stderr, "no profile found, created default")
		printProfile(user)
	case errors.Is(err, repository.ErrNotFound):
		fmt.Fprintln(os.Stderr, "no profile found")
		os.Exit(1)
	default:
		fatal("lookup failed: %v", err)
	}
}

func printProfile(user *domain.User) {
	out, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		fatal("encoding profile: %v", err)
	}
	fmt.Println(string(out))
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
