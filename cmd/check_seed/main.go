package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"giftem/pkg/domain"
	"giftem/pkg/seed"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <seed.yaml> [seed.yaml...]\n", os.Args[0])
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		data, err := seed.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: ok (%s)\n", path, summarize(data))
	}
	if failed {
		exitErr(fmt.Errorf("seed check failed"))
	}
}

func summarize(data seed.Data) string {
	perCategory := map[domain.ProductCategory]int{}
	for _, p := range data.Products {
		perCategory[p.Category]++
	}
	categories := make([]string, 0, len(perCategory))
	for c, n := range perCategory {
		categories = append(categories, fmt.Sprintf("%s=%d", c, n))
	}
	sort.Strings(categories)

	unread := 0
	for _, c := range data.Conversations {
		for _, id := range c.Participants {
			unread += c.UnreadCount(id)
		}
	}
	return fmt.Sprintf("%d products [%s], %d users, %d conversations, %d unread",
		len(data.Products), strings.Join(categories, " "),
		len(data.Users), len(data.Conversations), unread)
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
