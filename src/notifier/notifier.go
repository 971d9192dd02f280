package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"github.com/fan-arena/arena-gov/src/ledger"
)

// streamEvents must match the stream the API publishes to.
const streamEvents = "arenagov.events"

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func main() {
	token := getenv("DISCORD_TOKEN", "")
	channelID := getenv("DISCORD_CHANNEL_ID", "")
	redisURL := getenv("REDIS_URL", "redis://127.0.0.1:6379/0")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	rdb := redis.NewClient(opt)

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("discord: %v", err)
	}
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	if err := session.Open(); err != nil {
		log.Fatalf("discord open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go consume(ctx, rdb, session, channelID)

	log.Println("Notifier running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	cancel()
	session.Close()
}

// consume tails the ledger event stream and forwards each entry as a
// channel message. Events published before startup are not replayed.
func consume(ctx context.Context, rdb *redis.Client, s *discordgo.Session, channelID string) {
	lastID := "$"
	for {
		res, err := rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{streamEvents, lastID},
			Count:   16,
			Block:   5 * time.Second,
		}).Result()
		if ctx.Err() != nil {
			return
		}
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Printf("xread: %v", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range res {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				text := formatEvent(msg.Values)
				if text == "" {
					continue
				}
				if _, err := s.ChannelMessageSend(channelID, text); err != nil {
					log.Printf("discord send: %v", err)
				}
			}
		}
	}
}

func formatEvent(values map[string]interface{}) string {
	typ, _ := values["type"].(string)
	payload, _ := values["payload"].(string)

	switch ledger.EventType(typ) {
	case ledger.EventProposalCreated:
		var evt ledger.ProposalCreatedEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			log.Printf("bad %s payload: %v", typ, err)
			return ""
		}
		ends := time.Unix(evt.EndTime, 0).UTC().Format("2006-01-02 15:04 MST")
		return fmt.Sprintf("New proposal #%d: **%s** by %s — voting ends %s", evt.ID, evt.Title, evt.Creator, ends)
	case ledger.EventVoteCast:
		var evt ledger.VoteCastEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			log.Printf("bad %s payload: %v", typ, err)
			return ""
		}
		return fmt.Sprintf("%s voted **%s** on proposal #%d", evt.Account, evt.Choice, evt.ProposalID)
	default:
		return ""
	}
}
