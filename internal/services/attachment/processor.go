package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/png"
	"io"
	"math"

	"github.com/anoixa/taskboard/storage"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/semaphore"

	// 注册额外解码器，用于读取尺寸
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Dimensions 图片宽高
type Dimensions struct {
	Width  int
	Height int
}

// thumbnailFormats 支持生成缩略图的源格式
var thumbnailFormats = map[string]imaging.Format{
	"jpg":  imaging.JPEG,
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
}

// DefaultMaxImageDimension 允许解码的最大边长
const DefaultMaxImageDimension = 8192

// ErrImageTooLarge 像素尺寸超出处理上限，调用方应跳过后处理
var ErrImageTooLarge = errors.New("image exceeds max dimension")

// transparentPlan9 第 0 位保留为透明色的 Plan9 调色板
var transparentPlan9 = append(color.Palette{color.Transparent}, palette.Plan9[1:]...)

// fixedPalette 总是返回同一个调色板
type fixedPalette color.Palette

func (q fixedPalette) Quantize(p color.Palette, _ image.Image) color.Palette {
	return append(p, q...)
}

// Processor 图片后处理：超尺寸缩放与缩略图
type Processor struct {
	storage storage.Provider
	sem     *semaphore.Weighted
}

// NewProcessor workers 限制同时处理的图片数量
func NewProcessor(provider storage.Provider, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		storage: provider,
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

func (p *Processor) read(ctx context.Context, storagePath string) ([]byte, error) {
	rc, err := p.storage.GetWithContext(ctx, storagePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// write 编码并覆盖写入，src 为解码得到的原图，GIF 沿用其调色板
func (p *Processor) write(ctx context.Context, storagePath string, img, src image.Image, f imaging.Format, quality int) error {
	opts := []imaging.EncodeOption{
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	}
	if f == imaging.GIF {
		opts = append(opts, imaging.GIFQuantizer(gifPalette(src)))
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, f, opts...)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return p.storage.SaveWithContext(ctx, storagePath, &buf)
}

// gifPalette 调色板图沿用原调色板，其余情况使用带透明色的 Plan9
func gifPalette(src image.Image) fixedPalette {
	if pm, ok := src.(*image.Paletted); ok && len(pm.Palette) > 0 {
		return fixedPalette(pm.Palette)
	}
	return fixedPalette(transparentPlan9)
}

// checkDimension 解码前检查像素尺寸，maxDim <= 0 表示不限制
func checkDimension(cfg image.Config, maxDim int) error {
	if maxDim > 0 && (cfg.Width > maxDim || cfg.Height > maxDim) {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// Probe 读取图片尺寸
func (p *Processor) Probe(ctx context.Context, storagePath string) (Dimensions, error) {
	data, err := p.read(ctx, storagePath)
	if err != nil {
		return Dimensions{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// ResizeInPlace 宽或高超出上限时按比例缩小并覆盖原文件
// 返回处理后的尺寸和是否发生了缩放；尺寸合规时不写入
// 边长超过 maxDim 时不解码，返回 ErrImageTooLarge
func (p *Processor) ResizeInPlace(ctx context.Context, storagePath, ext string, maxW, maxH, maxDim, quality int) (Dimensions, bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Dimensions{}, false, err
	}
	defer p.sem.Release(1)

	data, err := p.read(ctx, storagePath)
	if err != nil {
		return Dimensions{}, false, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, false, fmt.Errorf("failed to decode image header: %w", err)
	}
	dims := Dimensions{Width: cfg.Width, Height: cfg.Height}

	if maxW <= 0 || maxH <= 0 || (cfg.Width <= maxW && cfg.Height <= maxH) {
		return dims, false, nil
	}

	// webp 等只能解码不能编码的格式保持原样
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return dims, false, nil
	}
	if err := checkDimension(cfg, maxDim); err != nil {
		return dims, false, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return dims, false, fmt.Errorf("failed to decode image: %w", err)
	}

	w, h := fitWithin(cfg.Width, cfg.Height, maxW, maxH)
	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	if err := p.write(ctx, storagePath, resized, img, f, quality); err != nil {
		return dims, false, err
	}

	return Dimensions{Width: w, Height: h}, true, nil
}

// GenerateThumbnail 缩放到 size×size 的方框内（包括放大），写到 dst
// 源格式不支持时返回 false 且不报错，边长超过 maxDim 时返回 ErrImageTooLarge
func (p *Processor) GenerateThumbnail(ctx context.Context, src, dst, ext string, size, maxDim, quality int) (bool, error) {
	f, ok := thumbnailFormats[ext]
	if !ok || size <= 0 {
		return false, nil
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)

	data, err := p.read(ctx, src)
	if err != nil {
		return false, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("failed to decode image header: %w", err)
	}
	if err := checkDimension(cfg, maxDim); err != nil {
		return false, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), size, size)
	thumb := imaging.Resize(img, w, h, imaging.Lanczos)
	if err := p.write(ctx, dst, thumb, img, f, quality); err != nil {
		return false, err
	}
	return true, nil
}

// fitWithin 按 min(maxW/w, maxH/h) 等比缩放，结果四舍五入且至少为 1
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * ratio))
	nh := int(math.Round(float64(h) * ratio))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if nw > maxW {
		nw = maxW
	}
	if nh > maxH {
		nh = maxH
	}
	return nw, nh
}
