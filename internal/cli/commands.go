// Package cli dispatches hlpcat's subcommands, following the teacher's
// commands.go style: a manual argument loop per subcommand rather than a
// flag-parsing framework, Chinese-language progress and error messages,
// os.Exit(1) on a fatal usage error.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"hlpcat/internal/config"
	"hlpcat/internal/hlpfile"
	"hlpcat/internal/pagecache"
	"hlpcat/internal/rtf"
)

// Dispatch routes argv (os.Args[1:]) to the matching subcommand.
func Dispatch(args []string, cfg *config.Config) {
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	switch args[0] {
	case "info":
		RunInfo(args[1:])
	case "pages":
		RunPages(args[1:], cfg)
	case "render":
		RunRender(args[1:], cfg)
	case "cnt":
		RunCnt(args[1:])
	default:
		fmt.Printf("错误: 未知命令 %q\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("用法: hlpcat <info|pages|render|cnt> <file.hlp> [参数...]")
}

// RunInfo prints a file's |SYSTEM| header fields and window list.
func RunInfo(args []string) {
	if len(args) < 1 {
		fmt.Println("错误: 请指定 .HLP 文件路径")
		fmt.Println("用法: hlpcat info <file.hlp>")
		os.Exit(1)
	}
	f, err := hlpfile.OpenFile(args[0])
	if err != nil {
		fmt.Printf("打开失败: %v\n", err)
		os.Exit(1)
	}
	defer hlpfile.CloseFile(f)

	fmt.Printf("标题: %s\n", f.Title)
	fmt.Printf("版权: %s\n", f.Copyright)
	if gd := f.GenerationDateString(); gd != "" {
		fmt.Printf("生成日期: %s\n", gd)
	}
	fmt.Printf("版本: %d.%d\n", f.Major, f.Minor)
	fmt.Printf("字符集: %d (代码页 %d)\n", f.Charset, f.CodePage)
	fmt.Printf("压缩: %v  页面大小: %#x  数据块大小: %#x\n", f.Compressed, f.TBSize, f.DSize)
	fmt.Printf("窗口数: %d\n", len(f.Windows))
	for i, w := range f.Windows {
		fmt.Printf("  [%d] %s: %q (%d,%d %dx%d)\n", i, w.Name, w.Caption, w.OriginX, w.OriginY, w.Width, w.Height)
	}
	fmt.Printf("页面数: %d\n", len(f.Pages))
}

// RunPages lists every page (number, offset, title), rebuilding the page
// cache from the in-memory page list if it is empty.
func RunPages(args []string, cfg *config.Config) {
	if len(args) < 1 {
		fmt.Println("错误: 请指定 .HLP 文件路径")
		fmt.Println("用法: hlpcat pages <file.hlp>")
		os.Exit(1)
	}
	f, err := hlpfile.OpenFile(args[0])
	if err != nil {
		fmt.Printf("打开失败: %v\n", err)
		os.Exit(1)
	}
	defer hlpfile.CloseFile(f)

	cache, err := pagecache.Open(args[0], cfg.CacheDir)
	if err != nil {
		fmt.Printf("缓存打开失败: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	entries, err := cache.ListPages()
	if err == nil && len(entries) == 0 {
		if err := cache.RebuildIndex(f); err != nil {
			fmt.Printf("索引构建失败: %v\n", err)
			os.Exit(1)
		}
		entries, err = cache.ListPages()
	}
	if err != nil {
		fmt.Printf("索引读取失败: %v\n", err)
		os.Exit(1)
	}
	for i, e := range entries {
		fmt.Printf("[%d] offset=%#x hash=%#x wnum=%d %s\n", i, e.Offset, e.Hash, e.WNumber, e.Title)
	}
	fmt.Printf("共 %d 页\n", len(entries))
}

// RunRender resolves a page via PageByHash/PageByOffset and writes its
// rendered RTF to stdout.
func RunRender(args []string, cfg *config.Config) {
	if len(args) < 2 {
		fmt.Println("错误: 请指定 .HLP 文件和页面哈希或偏移")
		fmt.Println("用法: hlpcat render <file.hlp> <hash-or-offset> [--offset]")
		os.Exit(1)
	}
	f, err := hlpfile.OpenFile(args[0])
	if err != nil {
		fmt.Printf("打开失败: %v\n", err)
		os.Exit(1)
	}
	defer hlpfile.CloseFile(f)

	byOffset := false
	rest := args[2:]
	for _, a := range rest {
		if a == "--offset" {
			byOffset = true
		}
	}

	key, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 32)
	if err != nil {
		key, err = strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Printf("无法解析页面键 %q: %v\n", args[1], err)
			os.Exit(1)
		}
	}

	var page *hlpfile.Page
	if byOffset {
		page, _ = f.PageByOffset(uint32(key))
	} else {
		page, _ = f.PageByHash(uint32(key))
	}
	if page == nil {
		fmt.Printf("未找到页面: %s\n", args[1])
		os.Exit(1)
	}

	cache, err := pagecache.Open(args[0], cfg.CacheDir)
	if err == nil {
		defer cache.Close()
		ck := pagecache.RenderKey(f, page, 1)
		if cached, ok, _ := cache.GetRendered(ck); ok {
			os.Stdout.Write(cached)
			return
		}
		rd, err := rtf.BrowsePage(page, 1, 0)
		if err != nil {
			fmt.Printf("渲染失败: %v\n", err)
			os.Exit(1)
		}
		cache.PutRendered(ck, rd.Bytes())
		os.Stdout.Write(rd.Bytes())
		return
	}

	rd, err := rtf.BrowsePage(page, 1, 0)
	if err != nil {
		fmt.Printf("渲染失败: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(rd.Bytes())
}

// RunCnt renders the .CNT sidecar outline as RTF, if present.
func RunCnt(args []string) {
	if len(args) < 1 {
		fmt.Println("错误: 请指定 .HLP 文件路径")
		fmt.Println("用法: hlpcat cnt <file.hlp>")
		os.Exit(1)
	}
	f, err := hlpfile.OpenFile(args[0])
	if err != nil {
		fmt.Printf("打开失败: %v\n", err)
		os.Exit(1)
	}
	defer hlpfile.CloseFile(f)

	if f.ContentsPage == nil {
		fmt.Println("此文件没有 .CNT 目录")
		return
	}
	rd, err := rtf.BrowsePage(f.ContentsPage, 1, 0)
	if err != nil {
		fmt.Printf("渲染失败: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(rd.Bytes())
}
