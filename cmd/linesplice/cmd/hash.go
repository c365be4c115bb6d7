package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"line-splicer/internal/errors"
	"line-splicer/internal/models"
)

func (a *app) newHashCmd() *cobra.Command {
	var req models.RangeHashRequest
	hashCmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the content hash of a line range, for use as expect_hash",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Path == "" {
				return errors.NewInvalidParamsError("--path is required", map[string]interface{}{"path": "required"})
			}
			svc, err := a.newService()
			if err != nil {
				return err
			}
			resp, errDetail := svc.HashRange(req)
			if errDetail != nil {
				return errDetail
			}
			fmt.Fprintln(a.stdout, resp.Hash)
			return nil
		},
	}
	hashCmd.Flags().StringVar(&req.Path, "path", "", "File to read")
	hashCmd.Flags().IntVar(&req.Start, "start", 0, "First line of the range (0-based)")
	hashCmd.Flags().IntVar(&req.End, "end", 0, "Line after the last line of the range")
	return hashCmd
}
