package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/inputs"
	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// ListSites 打印列表站点,不发出网络请求
func ListSites(w io.Writer, cfg *Config) error {
	if err := inputs.RequireFiles(inputs.Requirement{Role: "listing sites", Path: cfg.Inputs.ListingSites}); err != nil {
		return err
	}
	sites, err := inputs.LoadListingSites(cfg.Inputs.ListingSites)
	if err != nil {
		return err
	}
	for _, s := range sites.Sites {
		fmt.Fprintf(w, "%s (%s)\n", models.Domain(s.URL), s.URL)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s listing sites imported from %s\n", utils.FormatCount(len(sites.Sites)), cfg.Inputs.ListingSites)
	return nil
}

// ListHosters 打印[start, stop]范围内的托管商
func ListHosters(w io.Writer, cfg *Config, start, stop int) error {
	if err := inputs.RequireFiles(inputs.Requirement{Role: "hosters", Path: cfg.Inputs.Hosters}); err != nil {
		return err
	}
	blockedURLs, err := inputs.LoadRules(cfg.Inputs.BlockedHosters, models.DefaultBlockedURLs)
	if err != nil {
		return err
	}
	block := models.NewBlockPolicy(nil, nil, blockedURLs)
	hosters, err := inputs.LoadHosters(cfg.Inputs.Hosters, block, inputs.LoadOptions{Strict: cfg.Inputs.Strict})
	if err != nil {
		return err
	}
	selected := hosters.Range(start, stop)
	for _, h := range selected {
		fmt.Fprintf(w, "%s (%s)\n", h.Label(), h.URL)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s hosters imported from %s\n", utils.FormatCount(len(hosters.Sites)), cfg.Inputs.Hosters)
	fmt.Fprintf(w, "%s hosters selected\n", utils.FormatCount(len(selected)))
	return nil
}

// ListProducts 打印产品及其拼写变体
func ListProducts(w io.Writer, cfg *Config) error {
	if err := inputs.RequireFiles(inputs.Requirement{Role: "products", Path: cfg.Inputs.Products}); err != nil {
		return err
	}
	index, err := inputs.LoadKeywordIndex(cfg.Inputs.Products, inputs.LoadOptions{Strict: cfg.Inputs.Strict})
	if err != nil {
		return err
	}
	for _, p := range index.Products() {
		if v := index.Variations(p); len(v) > 0 {
			fmt.Fprintf(w, "%s (%s)\n", p, strings.Join(v, ", "))
		} else {
			fmt.Fprintln(w, p)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s products in %s\n", utils.FormatCount(len(index.Products())), cfg.Inputs.Products)
	fmt.Fprintf(w, "%s search terms for those products in total\n", utils.FormatCount(index.Len()))
	return nil
}
