package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DJ Agent", Ordered, func() {
	var binaryPath string

	BeforeAll(func() {
		binaryPath = filepath.Join(GinkgoT().TempDir(), "dj-agent")
		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		output, err := cmd.CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "Failed to build dj-agent: %s", string(output))
	})

	Context("when running with --help", func() {
		It("lists every agent command", func() {
			stdout, stderr, err := runAgent(binaryPath, nil, "--help")
			Expect(err).NotTo(HaveOccurred())
			Expect(stderr).To(BeEmpty())

			Expect(stdout).To(ContainSubstring("DJ Agent moves dataset payloads"))
			Expect(stdout).To(ContainSubstring("s3-download"))
			Expect(stdout).To(ContainSubstring("s3-upload"))
			Expect(stdout).To(ContainSubstring("export"))
		})

		DescribeTable("shows the common flags of",
			func(command string) {
				stdout, _, err := runAgent(binaryPath, nil, command, "--help")
				Expect(err).NotTo(HaveOccurred())
				Expect(stdout).To(ContainSubstring("--config"))
				Expect(stdout).To(ContainSubstring("--debug"))
			},
			Entry("s3-download", "s3-download"),
			Entry("s3-upload", "s3-upload"),
			Entry("export", "export"),
		)
	})

	Context("when the config is missing or broken", func() {
		It("fails without a config file", func() {
			stdout, stderr, err := runAgent(binaryPath, nil, "export")
			Expect(err).To(HaveOccurred())
			Expect(stdout + stderr).To(ContainSubstring("no config file provided"))
		})

		It("fails on invalid yaml", func() {
			path := createFileInDir(GinkgoT().TempDir(), "config.yaml", "invalid: yaml: :\nthis is not valid yaml\n")
			_, _, err := runAgent(binaryPath, nil, "export", "--config", path)
			Expect(err).To(HaveOccurred())
		})

		It("fails when a required field is missing", func() {
			dir := GinkgoT().TempDir()
			path := createFileInDir(dir, "config.yaml", fmt.Sprintf(`
export:
  export_path: %s
`, filepath.Join(dir, "out.jsonl")))
			stdout, stderr, err := runAgent(binaryPath, nil, "export", "--config", path)
			Expect(err).To(HaveOccurred())
			// fx errors go through the configured logger, which writes to stdout.
			Expect(stdout + stderr).To(ContainSubstring("InputPath"))
		})
	})

	Context("when exporting a local dataset", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
			createFileInDir(dir, "in.jsonl", `{"id":1,"text":"a","__dj__hash":"h1"}
{"id":2,"text":"b","__dj__hash":"h2"}
`)
		})

		It("converts jsonl to csv and drops hash columns", func() {
			path := createFileInDir(dir, "config.yaml", fmt.Sprintf(`
logging:
  level: debug
dataset:
  input_path: %s
export:
  export_path: %s
`, filepath.Join(dir, "in.jsonl"), filepath.Join(dir, "out", "result.csv")))

			_, stderr, err := runAgent(binaryPath, nil, "export", "--config", path)
			Expect(err).NotTo(HaveOccurred(), stderr)

			got, err := os.ReadFile(filepath.Join(dir, "out", "result.csv"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(got)).To(Equal("id,text\n1,a\n2,b\n"))
		})

		It("takes the export path from the environment", func() {
			path := createFileInDir(dir, "config.yaml", fmt.Sprintf(`
dataset:
  input_path: %s
export:
  export_path: %s
`, filepath.Join(dir, "in.jsonl"), filepath.Join(dir, "ignored.jsonl")))

			override := filepath.Join(dir, "from-env.jsonl")
			_, stderr, err := runAgent(binaryPath, map[string]string{"DJ_AGENT_EXPORT_EXPORT_PATH": override},
				"export", "--config", path)
			Expect(err).NotTo(HaveOccurred(), stderr)

			got, err := os.ReadFile(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(string(got), "\n")).To(Equal(2))
			Expect(filepath.Join(dir, "ignored.jsonl")).NotTo(BeAnExistingFile())
		})
	})

	Context("when downloading a dataset without remote leaves", func() {
		It("keeps local paths and exports the records", func() {
			dir := GinkgoT().TempDir()
			createFileInDir(dir, "in.jsonl", `{"id":1,"images":["/local/a.png"]}`+"\n")
			path := createFileInDir(dir, "config.yaml", fmt.Sprintf(`
dataset:
  input_path: %s
s3:
  region: us-west-2
  endpoint: http://127.0.0.1:1
  force_path_style: true
download:
  download_field: images
  save_dir: %s
export:
  export_path: %s
`, filepath.Join(dir, "in.jsonl"), filepath.Join(dir, "cache"), filepath.Join(dir, "out.jsonl")))

			_, stderr, err := runAgent(binaryPath, nil, "s3-download", "--config", path)
			Expect(err).NotTo(HaveOccurred(), stderr)

			got, err := os.ReadFile(filepath.Join(dir, "out.jsonl"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(got)).To(Equal(`{"id":1,"images":["/local/a.png"]}` + "\n"))
			Expect(filepath.Join(dir, "cache")).To(BeADirectory())
		})
	})
})
