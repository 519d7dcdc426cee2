package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/opentender/backend/internal/model"
	"github.com/spf13/cobra"
)

func runTenderCreate(cmd *cobra.Command, args []string) error {
	tender := &model.Tender{
		Title:      tenderTitle,
		Reference:  tenderReference,
		ClientName: tenderClient,
		Budget:     tenderBudget,
	}
	if tenderDeadline != "" {
		deadline, err := time.Parse("2006-01-02", tenderDeadline)
		if err != nil {
			return fmt.Errorf("invalid deadline %q: %w", tenderDeadline, err)
		}
		tender.Deadline = &deadline
	}

	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	if err := app.Tenders.Create(ctx, tender); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tender %d created\n", tender.ID)
	return nil
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		// 只接受已抽取的纯文本
		if mt := mimetype.Detect(data); !strings.HasPrefix(mt.String(), "text/") {
			return fmt.Errorf("%s is %s, expected extracted text", path, mt.String())
		}
		file := &model.KnowledgeFile{
			Name:             filepath.Base(path),
			Size:             int64(len(data)),
			ExtractedText:    string(data),
			ExtractionStatus: model.ExtractionCompleted,
		}
		if err := app.Knowledge.Create(ctx, file); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "knowledge file %d: %s\n", file.ID, file.Name)
	}
	return nil
}

func runAssetUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%s is %s, expected an image", path, mt.String())
	}

	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	if app.Store == nil {
		return errors.New("asset store is not configured (asset.endpoint)")
	}
	if err := app.Store.EnsureBucket(ctx); err != nil {
		return err
	}

	id := uuid.NewString()
	objectKey := "assets/" + id + mt.Extension()
	if err := app.Store.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), mt.String()); err != nil {
		return err
	}

	name := assetName
	if name == "" {
		name = filepath.Base(path)
	}
	asset := &model.Asset{
		ID:            id,
		Name:          name,
		ObjectKey:     objectKey,
		ContentType:   mt.String(),
		AIDescription: assetDescription,
	}
	if err := app.Assets.Create(ctx, asset); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "asset %s uploaded, reference it as ![%s](asset:%s)\n", id, name, id)
	return nil
}
