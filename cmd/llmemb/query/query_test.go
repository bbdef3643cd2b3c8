package querycmder_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	querycmder "github.com/Teeticode/LLM-EMB/cmd/llmemb/query"
	llmemblogger "github.com/Teeticode/LLM-EMB/pkg/logger"
	testutils "github.com/Teeticode/LLM-EMB/pkg/utils/test"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
	"github.com/Teeticode/LLM-EMB/proxy"
)

var _ = Describe("query command", func() {
	var (
		server         *httptest.Server
		p              *proxy.Proxy
		driver         *testutils.MockVectorDriver
		vectorEmbedder *testutils.MockEmbedder
		configDir      string
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()
		vectorEmbedder = testutils.NewMockEmbedder()

		var err error
		p, err = proxy.New(proxy.Config{
			Generator:      testutils.NewMockGenerator(),
			Embedder:       testutils.NewMockEmbedder(),
			VectorEmbedder: vectorEmbedder,
			VectorDriver:   driver,
		}, llmemblogger.Nop())
		Expect(err).NotTo(HaveOccurred())
		server = httptest.NewServer(p.Handler())

		configDir, err = os.MkdirTemp("", "llmemb-query-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
		Expect(p.Close()).To(Succeed())
		os.RemoveAll(configDir)
	})

	execute := func(args ...string) (string, error) {
		root := &cobra.Command{Use: "llmemb", SilenceUsage: true, SilenceErrors: true}
		root.PersistentFlags().String("config-dir", configDir, "")
		root.AddCommand(querycmder.NewQueryCmd())

		var out, errOut bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&errOut)
		root.SetArgs(append([]string{"query"}, args...))
		err := root.Execute()
		return out.String(), err
	}

	Describe("Query", func() {
		It("returns the server's matches", func() {
			driver.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "2", Embedding: []float32{0.5, 0.5}}, Score: 0.97},
			}

			result, err := querycmder.Query(context.Background(), server.URL, "hello world")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Matches).To(HaveLen(1))
			Expect(result.Matches[0].ID).To(Equal("2"))
			Expect(result.Matches[0].Score).To(BeNumerically("~", 0.97, 0.0001))

			Expect(vectorEmbedder.Batches()).To(Equal([][]string{{"hello world"}}))
			Expect(driver.LastTopK()).To(Equal(1))
		})

		It("tolerates a trailing slash on the target", func() {
			result, err := querycmder.Query(context.Background(), server.URL+"/", "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Matches).To(BeEmpty())
		})

		It("surfaces the server's error message", func() {
			driver.Err = errors.New("index unavailable")

			_, err := querycmder.Query(context.Background(), server.URL, "hello")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("(500)"))
			Expect(err.Error()).To(ContainSubstring("index unavailable"))
		})

		It("reports non-envelope failures verbatim", func() {
			plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			}))
			defer plain.Close()

			_, err := querycmder.Query(context.Background(), plain.URL, "hello")
			Expect(err).To(MatchError(ContainSubstring("query failed (502): bad gateway")))
		})
	})

	Describe("command", func() {
		It("requires exactly one argument", func() {
			_, err := execute()
			Expect(err).To(HaveOccurred())
		})

		It("prints only ids with --quiet", func() {
			driver.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "7"}, Score: 0.5},
			}

			out, err := execute("hello", "--quiet", "--target", server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("7\n"))
		})

		It("prints the match and its score", func() {
			driver.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "3", Embedding: []float32{0.1, 0.2, 0.3, 0.4, 0.5}}, Score: 0.8125},
			}

			out, err := execute("hello", "--target", server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("3"))
			Expect(out).To(ContainSubstring("score: 0.8125"))
			Expect(out).To(ContainSubstring("(5 dims)"))
		})

		It("reports an empty index", func() {
			out, err := execute("hello", "--target", server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("No matches found."))
		})
	})
})
