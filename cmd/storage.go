package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"soundcrate/config"
	"soundcrate/storage"
)

var (
	storagePrefix string
	storageStats  bool
	storageDelete bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and clean the audio bucket",
	Long:  `Lists bucket contents, aggregates usage, and deletes object prefixes. Useful for sweeping orphaned uploads left by interrupted requests.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		store, err := storage.NewStore(cfg)
		if err != nil {
			log.Fatalf("Failed to create object store: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		switch {
		case storageDelete:
			if storagePrefix == "" {
				log.Fatal("Deleting requires --prefix")
			}
			removed, err := store.DeletePrefix(ctx, storagePrefix)
			if err != nil {
				log.Fatalf("Failed to delete prefix %s: %v", storagePrefix, err)
			}
			fmt.Printf("Removed %d objects under %s\n", removed, storagePrefix)

		case storageStats:
			stats, err := store.Stats(ctx, storagePrefix)
			if err != nil {
				log.Fatalf("Failed to aggregate stats: %v", err)
			}
			fmt.Printf("Objects: %d\n", stats.TotalObjects)
			fmt.Printf("Total size: %s\n", storage.FormatSize(stats.TotalSize))
			if !stats.LastModified.IsZero() {
				fmt.Printf("Last modified: %s\n", stats.LastModified.Format(time.RFC3339))
			}

		default:
			if err := store.PrintStatus(ctx, storagePrefix); err != nil {
				log.Fatalf("Failed to list bucket: %v", err)
			}
		}
	},
}

func init() {
	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "object prefix to operate on")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "print aggregate usage only")
	storageCmd.Flags().BoolVarP(&storageDelete, "delete", "d", false, "delete every object under the prefix")
	rootCmd.AddCommand(storageCmd)
}
